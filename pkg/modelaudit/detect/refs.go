package detect

import (
	"fmt"
	"sort"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// detectErrorTokens flags cells whose evaluated value is a spreadsheet
// error marker.
func (e *Engine) detectErrorTokens(out *detectorResult) {
	for ref, v := range e.wb.Values {
		if v.Kind != models.ValueError {
			continue
		}
		out.issues = append(out.issues, models.NewIssue(
			models.IssueBrokenReference,
			models.SeverityHigh,
			fmt.Sprintf("cell evaluates to error %s", v.Text),
			e.evidence(ref),
		))
	}
}

// detectExternalRefs flags formulas referencing workbooks outside the
// loaded set.
func (e *Engine) detectExternalRefs(out *detectorResult) {
	for _, ext := range e.build.Externals {
		out.issues = append(out.issues, models.NewIssue(
			models.IssueExternalReference,
			models.SeverityMedium,
			fmt.Sprintf("formula depends on external workbook reference %s", ext.Target),
			e.evidence(ext.Ref),
		))
	}
}

// detectBrokenRefs flags dangling references: graph nodes created for a
// coordinate with no cell record that also lies outside the target
// sheet's used range, or on a sheet the workbook does not have. A
// missing node inside the used range is a genuinely empty-but-valid
// cell and is not flagged.
func (e *Engine) detectBrokenRefs(out *detectorResult) {
	for id := 0; id < e.graph.Len(); id++ {
		info := e.graph.Info(id)
		if !info.Missing {
			continue
		}
		ref := e.graph.Ref(id)
		if e.wb.HasSheet(ref.Sheet) {
			ext := e.wb.Extents[ref.Sheet]
			if ref.Row <= ext.MaxRow && ref.Col <= ext.MaxCol {
				continue
			}
		}

		dependents := e.graph.Dependents(id)
		refs := make([]models.CellRef, 0, len(dependents))
		for _, d := range dependents {
			refs = append(refs, e.graph.Ref(d))
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })

		evidence := []models.Evidence{{Ref: ref}}
		for _, r := range refs {
			evidence = append(evidence, e.evidence(r))
		}
		out.issues = append(out.issues, models.NewIssue(
			models.IssueBrokenReference,
			models.SeverityHigh,
			fmt.Sprintf("%d formula(s) reference %s, which has no cell record", len(refs), ref),
			evidence...,
		))
	}
}
