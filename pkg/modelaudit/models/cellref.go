// Package models defines data structures shared across the audit pipeline.
package models

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// CellRef identifies a single workbook cell by sheet name and 1-based
// row/column. Absolute vs relative syntax from the source formula is
// discarded during resolution; only the resolved coordinate matters.
type CellRef struct {
	// Sheet is the worksheet name.
	Sheet string `json:"sheet"`
	// Row is the 1-based row index.
	Row int `json:"row"`
	// Col is the 1-based column index.
	Col int `json:"col"`
}

// String renders the reference in Sheet!A1 notation.
func (r CellRef) String() string {
	name, err := excelize.CoordinatesToCellName(r.Col, r.Row)
	if err != nil {
		return fmt.Sprintf("%s!R%dC%d", r.Sheet, r.Row, r.Col)
	}
	return r.Sheet + "!" + name
}

// Less orders references by (sheet, row, col). Used wherever a
// deterministic iteration order over cells is required.
func (r CellRef) Less(o CellRef) bool {
	if r.Sheet != o.Sheet {
		return r.Sheet < o.Sheet
	}
	if r.Row != o.Row {
		return r.Row < o.Row
	}
	return r.Col < o.Col
}
