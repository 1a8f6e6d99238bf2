package models

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// IssueKind enumerates the audit finding categories.
type IssueKind string

const (
	IssueHardCodedPlug     IssueKind = "hard_coded_plug"
	IssueBalanceImbalance  IssueKind = "balance_sheet_imbalance"
	IssueBrokenReference   IssueKind = "broken_reference"
	IssueExternalReference IssueKind = "external_reference"
	IssueCircularReference IssueKind = "circular_reference"
	IssueOrphanedRegion    IssueKind = "orphaned_region"
	IssueParseWarning      IssueKind = "parse_warning"
)

// Severity ranks a finding. Higher values are more severe.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	default:
		return "Info"
	}
}

// MarshalText makes severities render as their names in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Critical":
		*s = SeverityCritical
	case "High":
		*s = SeverityHigh
	case "Medium":
		*s = SeverityMedium
	case "Info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Evidence ties a finding to one cell with the value and formula text
// observed there.
type Evidence struct {
	// Ref is the evidencing cell.
	Ref CellRef `json:"ref"`
	// Value is the evaluated value rendered as text.
	Value string `json:"value,omitempty"`
	// Formula is the raw formula text, when the cell has one.
	Formula string `json:"formula,omitempty"`
}

// Issue is one audit finding. Identity is deterministic over kind and
// primary evidence coordinate so repeated runs on the same workbook
// produce the same IDs.
type Issue struct {
	// ID is the deduplication identifier.
	ID string `json:"id"`
	// Kind is the finding category.
	Kind IssueKind `json:"kind"`
	// Severity ranks the finding.
	Severity Severity `json:"severity"`
	// Message is the populated human-readable description.
	Message string `json:"message"`
	// Evidence lists the cells supporting the finding. The first entry
	// is the primary coordinate used for identity.
	Evidence []Evidence `json:"evidence,omitempty"`
	// Why explains the risk behind this category of finding.
	Why string `json:"why,omitempty"`
	// Fix suggests remediation for this category of finding.
	Fix string `json:"fix,omitempty"`
	// LowConfidence marks findings touching cells whose formulas could
	// not be fully tokenized.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// NewIssue builds an issue with its deterministic identifier. The first
// evidence entry, when present, is the primary coordinate.
func NewIssue(kind IssueKind, sev Severity, message string, evidence ...Evidence) Issue {
	primary := ""
	if len(evidence) > 0 {
		primary = evidence[0].Ref.String()
	}
	return Issue{
		ID:       issueID(kind, primary),
		Kind:     kind,
		Severity: sev,
		Message:  message,
		Evidence: evidence,
	}
}

func issueID(kind IssueKind, primary string) string {
	h := fnv.New64a()
	h.Write([]byte(string(kind)))
	h.Write([]byte{'|'})
	h.Write([]byte(primary))
	return strconv.FormatUint(h.Sum64(), 16)
}
