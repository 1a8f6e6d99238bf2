package detect

import (
	"fmt"
	"sort"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// detectCycles emits one finding per strongly-connected component
// containing a cycle, never enumerating elementary cycles.
func (e *Engine) detectCycles(out *detectorResult) {
	for _, comp := range e.analysis.Cycles() {
		refs := make([]models.CellRef, 0, len(comp))
		for _, id := range comp {
			refs = append(refs, e.graph.Ref(id))
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })

		evidence := make([]models.Evidence, 0, len(refs))
		for _, ref := range refs {
			evidence = append(evidence, e.evidence(ref))
		}
		msg := fmt.Sprintf("%d cells form a circular reference chain", len(refs))
		if len(refs) == 1 {
			msg = "cell references itself"
		}
		out.issues = append(out.issues, models.NewIssue(
			models.IssueCircularReference,
			models.SeverityMedium,
			msg,
			evidence...,
		))
	}
}

// detectOrphans flags formula cells disconnected from both inputs and
// outputs.
func (e *Engine) detectOrphans(out *detectorResult) {
	for _, id := range e.analysis.Orphans() {
		ref := e.graph.Ref(id)
		out.issues = append(out.issues, models.NewIssue(
			models.IssueOrphanedRegion,
			models.SeverityInfo,
			"formula is disconnected from the rest of the model",
			e.evidence(ref),
		))
	}
}

// detectParseWarnings surfaces untokenizable formulas as low-confidence
// informational findings.
func (e *Engine) detectParseWarnings(out *detectorResult) {
	for ref, reason := range e.build.ParseWarnings {
		out.issues = append(out.issues, models.NewIssue(
			models.IssueParseWarning,
			models.SeverityInfo,
			fmt.Sprintf("formula could not be tokenized: %s", reason),
			e.evidence(ref),
		))
	}
}
