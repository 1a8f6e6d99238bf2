// Package detect runs the audit heuristics over a finished dependency
// graph and the values/formulas snapshot, and reduces graph statistics
// to the 1-5 complexity score.
package detect

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy is the explicit label-matching configuration behind the soft
// heuristics: which sheet and row labels identify the balance sheet
// totals, which headers mark projection periods, and the numeric
// tolerances. All matching is case-insensitive substring against these
// synonym lists, so the behavior is specified rather than incidental.
type Policy struct {
	// BalanceSheetNames marks sheet names that hold the balance sheet.
	BalanceSheetNames []string `yaml:"balance_sheet_names"`
	// AssetLabels marks the Assets total row.
	AssetLabels []string `yaml:"asset_labels"`
	// LiabilityEquityLabels marks a combined Liabilities+Equity total row.
	LiabilityEquityLabels []string `yaml:"liability_equity_labels"`
	// LiabilityLabels marks a standalone Liabilities total row.
	LiabilityLabels []string `yaml:"liability_labels"`
	// EquityLabels marks a standalone Equity total row.
	EquityLabels []string `yaml:"equity_labels"`
	// BalanceTolerance is the imbalance threshold in model currency.
	// Deltas at or under it are treated as rounding.
	BalanceTolerance float64 `yaml:"balance_tolerance"`
	// LabelColumns is how many leading columns are scanned for row labels.
	LabelColumns int `yaml:"label_columns"`
	// SkipSheetMarkers excludes data-dump sheets from the plug scan.
	SkipSheetMarkers []string `yaml:"skip_sheet_markers"`
	// ProjectionMarkers marks period headers as forecast columns.
	ProjectionMarkers []string `yaml:"projection_markers"`
	// HeaderScanRows is how many top rows are scanned for period headers.
	HeaderScanRows int `yaml:"header_scan_rows"`
	// FallbackSkipColumns is the fixed label+historical column count
	// assumed when no projection header is found.
	FallbackSkipColumns int `yaml:"fallback_skip_columns"`
	// MinFormulaCells is the minimum formula cells a projection row
	// needs before a literal in it can be called a plug.
	MinFormulaCells int `yaml:"min_formula_cells"`
}

// DefaultPolicy returns the compiled-in label policy.
func DefaultPolicy() Policy {
	return Policy{
		BalanceSheetNames:     []string{"balance", "bs"},
		AssetLabels:           []string{"total assets"},
		LiabilityEquityLabels: []string{"total liabilities and equity", "total liabilities & equity", "total liabilities and shareholders"},
		LiabilityLabels:       []string{"total liabilities"},
		EquityLabels:          []string{"total equity", "total shareholders' equity", "total stockholders' equity"},
		BalanceTolerance:      1.0,
		LabelColumns:          2,
		SkipSheetMarkers:      []string{"raw", "cache", "dump"},
		ProjectionMarkers:     []string{"proj", "forecast", "est", "plan", "budget"},
		HeaderScanRows:        5,
		FallbackSkipColumns:   3,
		MinFormulaCells:       3,
	}
}

// LoadPolicy reads a policy overlay from a YAML file. Fields absent
// from the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy: %w", err)
	}
	return p, nil
}

// MatchLabel reports whether label matches any synonym,
// case-insensitively by substring.
func (p Policy) MatchLabel(label string, synonyms []string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return false
	}
	for _, s := range synonyms {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// SkipSheet reports whether the named sheet is excluded from the plug
// scan, such as raw data dumps.
func (p Policy) SkipSheet(name string) bool {
	return p.MatchLabel(name, p.SkipSheetMarkers)
}

// yearEstimateRE matches period headers like "2026E" or "FY27E" where a
// trailing E after digits marks an estimate column.
var yearEstimateRE = regexp.MustCompile(`\d{2,4}\s*e$`)

// IsProjectionHeader reports whether a period header labels a forecast
// column rather than a historical one.
func (p Policy) IsProjectionHeader(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return false
	}
	if yearEstimateRE.MatchString(l) {
		return true
	}
	return p.MatchLabel(l, p.ProjectionMarkers)
}
