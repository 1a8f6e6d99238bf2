package detect

import (
	"fmt"
	"math"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// detectBalance verifies Assets = Liabilities + Equity per period column
// on the balance sheet. Missing labels are an informational diagnostic,
// never an error: the run completes without this detector's findings.
func (e *Engine) detectBalance(out *detectorResult) {
	sheet, ok := e.findBalanceSheet()
	if !ok {
		out.diagnostics = append(out.diagnostics, "balance sheet not found: no sheet name matched the policy")
		return
	}

	assetsRow, ok := e.findLabeledRow(sheet, e.policy.AssetLabels)
	if !ok {
		out.diagnostics = append(out.diagnostics,
			fmt.Sprintf("balance check skipped: no assets total label found on sheet %q", sheet))
		return
	}

	// A combined Liabilities+Equity total row wins; otherwise the two
	// standalone totals are summed.
	combinedRow, haveCombined := e.findLabeledRow(sheet, e.policy.LiabilityEquityLabels)
	var liabRow, equityRow int
	if !haveCombined {
		var okL, okE bool
		liabRow, okL = e.findLabeledRow(sheet, e.policy.LiabilityLabels)
		equityRow, okE = e.findLabeledRow(sheet, e.policy.EquityLabels)
		if !okL || !okE {
			out.diagnostics = append(out.diagnostics,
				fmt.Sprintf("balance check skipped: liabilities/equity total labels not found on sheet %q", sheet))
			return
		}
	}

	ext := e.wb.Extents[sheet]
	for col := e.policy.LabelColumns + 1; col <= ext.MaxCol; col++ {
		assetsRef := models.CellRef{Sheet: sheet, Row: assetsRow, Col: col}
		assets, ok := e.numberAt(assetsRef)
		if !ok {
			continue
		}

		var other float64
		var otherRefs []models.CellRef
		if haveCombined {
			ref := models.CellRef{Sheet: sheet, Row: combinedRow, Col: col}
			v, ok := e.numberAt(ref)
			if !ok {
				continue
			}
			other = v
			otherRefs = []models.CellRef{ref}
		} else {
			liabRef := models.CellRef{Sheet: sheet, Row: liabRow, Col: col}
			equityRef := models.CellRef{Sheet: sheet, Row: equityRow, Col: col}
			liab, okL := e.numberAt(liabRef)
			equity, okE := e.numberAt(equityRef)
			if !okL || !okE {
				continue
			}
			other = liab + equity
			otherRefs = []models.CellRef{liabRef, equityRef}
		}

		delta := assets - other
		if math.Abs(delta) <= e.policy.BalanceTolerance {
			continue
		}

		evidence := []models.Evidence{e.evidence(assetsRef)}
		for _, ref := range otherRefs {
			evidence = append(evidence, e.evidence(ref))
		}
		out.issues = append(out.issues, models.NewIssue(
			models.IssueBalanceImbalance,
			models.SeverityCritical,
			fmt.Sprintf("balance sheet out of balance in column %d: assets differ from liabilities+equity by %.2f", col, delta),
			evidence...,
		))
	}
}

// findBalanceSheet picks the first sheet whose name matches the policy.
func (e *Engine) findBalanceSheet() (string, bool) {
	for _, name := range e.wb.Sheets {
		if e.policy.MatchLabel(name, e.policy.BalanceSheetNames) {
			return name, true
		}
	}
	return "", false
}

// findLabeledRow scans the leading label columns top to bottom for the
// first row matching the synonyms.
func (e *Engine) findLabeledRow(sheet string, synonyms []string) (int, bool) {
	ext := e.wb.Extents[sheet]
	for row := 1; row <= ext.MaxRow; row++ {
		for col := 1; col <= e.policy.LabelColumns && col <= ext.MaxCol; col++ {
			v := e.wb.Values[models.CellRef{Sheet: sheet, Row: row, Col: col}]
			if v.Kind == models.ValueText && e.policy.MatchLabel(v.Text, synonyms) {
				return row, true
			}
		}
	}
	return 0, false
}

func (e *Engine) numberAt(ref models.CellRef) (float64, bool) {
	v, ok := e.wb.Values[ref]
	if !ok || v.Kind != models.ValueNumber {
		return 0, false
	}
	return v.Number, true
}
