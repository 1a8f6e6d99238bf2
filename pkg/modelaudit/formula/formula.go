// Package formula extracts resolved cell references from raw formula
// text. It understands cross-sheet references, absolute markers, ranges,
// and whole-row/whole-column references bounded to the sheet's used
// range. Unknown function names are opaque: their argument lists are
// still scanned for references.
package formula

import (
	"errors"
	"sort"
	"strings"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"

	"github.com/auditkit/modelaudit/pkg/modelaudit/loader"
	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// ErrTokenize indicates the formula text could not be tokenized. The
// cell keeps its graph node but contributes no outgoing references; the
// condition surfaces as a low-confidence marker, never an abort.
var ErrTokenize = errors.New("formula cannot be tokenized")

// maxRangeCells caps rectangular range expansion. Anything larger is
// clipped to the sheet's used range first, which bounds it in practice.
const maxRangeCells = 1 << 16

// References tokenizes one formula and resolves every cell reference it
// contains. sheet names the worksheet the formula lives on, used to
// resolve unqualified references. extents bounds whole-row and
// whole-column references. External workbook references are returned
// separately and never become graph nodes.
func References(raw, sheet string, extents map[string]loader.Extent) ([]models.CellRef, []string, error) {
	text := strings.TrimPrefix(raw, "=")
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrTokenize
	}

	ps := efp.ExcelParser()
	tokens := ps.Parse(text)
	if tokens == nil {
		return nil, nil, ErrTokenize
	}

	seen := make(map[models.CellRef]struct{})
	var refs []models.CellRef
	var externals []string

	for _, tok := range tokens {
		if tok.TType != efp.TokenTypeOperand || tok.TSubType != efp.TokenSubTypeRange {
			continue
		}
		val := tok.TValue

		// Workbook-external references carry a bracketed book name,
		// e.g. [Book1.xlsx]Sheet1!A1.
		if strings.Contains(val, "[") && strings.Contains(val, "]") {
			externals = append(externals, val)
			continue
		}

		targetSheet := sheet
		cellPart := val
		if i := strings.LastIndex(val, "!"); i >= 0 {
			targetSheet = strings.Trim(val[:i], "'")
			cellPart = val[i+1:]
		}
		cellPart = strings.ReplaceAll(cellPart, "$", "")

		for _, ref := range expand(targetSheet, cellPart, extents) {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs, externals, nil
}

// expand resolves one sheet-local reference string into concrete
// coordinates. Named ranges and other non-reference operands resolve to
// nothing rather than erroring: the parser treats them opaquely.
func expand(sheet, cellPart string, extents map[string]loader.Extent) []models.CellRef {
	ext := extents[sheet]

	start, end, isRange := strings.Cut(cellPart, ":")
	if !isRange {
		col, row, err := excelize.CellNameToCoordinates(start)
		if err != nil {
			return nil
		}
		return []models.CellRef{{Sheet: sheet, Row: row, Col: col}}
	}

	if r1, c1, r2, c2, ok := rangeBounds(start, end, ext); ok {
		return expandRect(sheet, r1, c1, r2, c2)
	}
	return nil
}

// rangeBounds resolves a range's corner coordinates, handling the
// whole-column (A:C) and whole-row (3:7) forms by clipping to the used
// range extent.
func rangeBounds(start, end string, ext loader.Extent) (r1, c1, r2, c2 int, ok bool) {
	switch {
	case isColumnOnly(start) && isColumnOnly(end):
		sc, err1 := excelize.ColumnNameToNumber(start)
		ec, err2 := excelize.ColumnNameToNumber(end)
		if err1 != nil || err2 != nil || ext.MaxRow == 0 {
			return 0, 0, 0, 0, false
		}
		r1, c1, r2, c2 = 1, sc, ext.MaxRow, ec
	case isRowOnly(start) && isRowOnly(end):
		sr, err1 := parseRow(start)
		er, err2 := parseRow(end)
		if err1 != nil || err2 != nil || ext.MaxCol == 0 {
			return 0, 0, 0, 0, false
		}
		r1, c1, r2, c2 = sr, 1, er, ext.MaxCol
	default:
		var err1, err2 error
		c1, r1, err1 = excelize.CellNameToCoordinates(start)
		c2, r2, err2 = excelize.CellNameToCoordinates(end)
		if err1 != nil || err2 != nil {
			return 0, 0, 0, 0, false
		}
	}

	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return r1, c1, r2, c2, true
}

func expandRect(sheet string, r1, c1, r2, c2 int) []models.CellRef {
	n := (r2 - r1 + 1) * (c2 - c1 + 1)
	if n <= 0 || n > maxRangeCells {
		return nil
	}
	refs := make([]models.CellRef, 0, n)
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			refs = append(refs, models.CellRef{Sheet: sheet, Row: row, Col: col})
		}
	}
	return refs
}

func isColumnOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func isRowOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseRow(s string) (int, error) {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	if n < 1 {
		return 0, errors.New("invalid row")
	}
	return n, nil
}

// HasExternalReference reports whether raw formula text references
// another workbook or a file path, without full tokenization.
func HasExternalReference(raw string) bool {
	return strings.Contains(raw, "[") && strings.Contains(raw, "]") ||
		strings.Contains(raw, ".xls")
}
