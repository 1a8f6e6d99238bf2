package detect

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// detectPlugs scans projection-region rows that are majority-formula for
// hard-coded literals breaking the formula pattern. Rows need at least
// the policy's minimum formula count plus one numeric literal to
// qualify; single-column rows carry no signal and are exempt.
func (e *Engine) detectPlugs(out *detectorResult) {
	for _, sheet := range e.wb.Sheets {
		if e.policy.SkipSheet(sheet) {
			continue
		}
		startCol, found := e.projectionStart(sheet)
		if !found {
			e.log.Debug("no projection header found, using fixed column offset",
				zap.String("sheet", sheet), zap.Int("start_col", startCol))
		}
		e.scanSheetForPlugs(sheet, startCol, out)
	}
}

func (e *Engine) scanSheetForPlugs(sheet string, startCol int, out *detectorResult) {
	byRow := make(map[int][]models.CellRef)
	for ref := range e.wb.Values {
		if ref.Sheet == sheet && ref.Col >= startCol {
			byRow[ref.Row] = append(byRow[ref.Row], ref)
		}
	}
	rows := make([]int, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	for _, row := range rows {
		cells := byRow[row]
		sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

		var formulas, literals []models.CellRef
		numeric := make(map[int]float64)
		for _, ref := range cells {
			rec := e.wb.Record(ref)
			if rec.Value.Kind == models.ValueNumber {
				numeric[ref.Col] = rec.Value.Number
			}
			switch rec.Kind() {
			case models.CellFormula:
				formulas = append(formulas, ref)
			case models.CellLiteral:
				if rec.Value.Kind == models.ValueNumber {
					literals = append(literals, ref)
				}
			}
		}

		if len(formulas) < e.policy.MinFormulaCells || len(literals) == 0 {
			continue
		}
		// The row must be majority-formula: an assumption row that is
		// mostly literals with a few derived cells is not plugged.
		if len(formulas) <= len(literals) {
			continue
		}

		for _, lit := range literals {
			if continuationConsistent(numeric, lit.Col) {
				continue
			}
			rec := e.wb.Record(lit)
			out.issues = append(out.issues, models.NewIssue(
				models.IssueHardCodedPlug,
				models.SeverityHigh,
				fmt.Sprintf("hard-coded value %s interrupts a formula row (%d formulas) in the projection region",
					rec.Value.Display(), len(formulas)),
				e.evidence(lit),
			))
		}
	}
}

// continuationConsistent reports whether the literal at col matches what
// continuing the growth rate of the two nearest preceding numeric cells
// would produce. A consistent literal is a transcribed value, not a plug.
func continuationConsistent(numeric map[int]float64, col int) bool {
	lit, ok := numeric[col]
	if !ok {
		return false
	}
	prev := make([]float64, 0, 2)
	for c := col - 1; c >= 1 && len(prev) < 2; c-- {
		if v, ok := numeric[c]; ok {
			prev = append(prev, v)
		}
	}
	if len(prev) < 2 || prev[1] == 0 || prev[0] == 0 {
		return false
	}
	implied := prev[0] * (prev[0] / prev[1])
	tolerance := math.Max(1e-9, 0.005*math.Abs(implied))
	return math.Abs(lit-implied) <= tolerance
}

// projectionStart locates the first forecast column by scanning the top
// rows for a projection-marked period header. When no header matches,
// the policy's fixed offset stands in and found is false.
func (e *Engine) projectionStart(sheet string) (startCol int, found bool) {
	ext := e.wb.Extents[sheet]
	for row := 1; row <= e.policy.HeaderScanRows && row <= ext.MaxRow; row++ {
		for col := 1; col <= ext.MaxCol; col++ {
			v := e.wb.Values[models.CellRef{Sheet: sheet, Row: row, Col: col}]
			if v.Kind == models.ValueText && e.policy.IsProjectionHeader(v.Text) {
				return col, true
			}
		}
	}
	return e.policy.FallbackSkipColumns + 1, false
}
