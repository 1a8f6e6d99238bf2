// Package loader reads a workbook into the aligned values and formulas
// tables consumed by the rest of the audit pipeline.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// ErrUnreadableWorkbook indicates the input file is not a readable
// workbook container. This is fatal: no report is produced.
var ErrUnreadableWorkbook = errors.New("unreadable workbook")

// ErrUnsupportedFormat indicates the input cannot carry formulas (a
// value-only table) while formula analysis was requested.
var ErrUnsupportedFormat = errors.New("format does not support formulas")

// Extent is the used range of one sheet. Whole-row and whole-column
// references are bounded to it rather than treated as infinite.
type Extent struct {
	MaxRow int
	MaxCol int
}

// Workbook is the immutable snapshot one audit run works from: every
// populated cell's evaluated value, every formula cell's raw text, and
// per-sheet used ranges.
type Workbook struct {
	BookName string
	Sheets   []string
	Values   map[models.CellRef]models.TypedValue
	Formulas map[models.CellRef]string
	Extents  map[string]Extent
	// Diagnostics records per-sheet read failures and other non-fatal
	// load notes.
	Diagnostics []string
}

// Record assembles the cell record at ref from the two tables. A ref
// absent from both tables yields an empty-value literal record.
func (wb *Workbook) Record(ref models.CellRef) models.CellRecord {
	return models.CellRecord{
		Ref:     ref,
		Value:   wb.Values[ref],
		Formula: wb.Formulas[ref],
	}
}

// HasSheet reports whether the workbook contains the named sheet.
func (wb *Workbook) HasSheet(name string) bool {
	for _, s := range wb.Sheets {
		if s == name {
			return true
		}
	}
	return false
}

// Load opens a workbook file and extracts values and formulas for every
// non-empty cell across all sheets. A sheet that fails to read is
// recorded as a diagnostic and skipped; only an unreadable container is
// fatal.
func Load(path string, log *zap.Logger) (*Workbook, error) {
	if log == nil {
		log = zap.NewNop()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	wb := &Workbook{
		BookName: filepath.Base(path),
		Sheets:   f.GetSheetList(),
		Values:   make(map[models.CellRef]models.TypedValue),
		Formulas: make(map[models.CellRef]string),
		Extents:  make(map[string]Extent),
	}

	for _, sheet := range wb.Sheets {
		if err := loadSheet(f, sheet, wb); err != nil {
			msg := fmt.Sprintf("failed to read sheet %q: %v", sheet, err)
			wb.Diagnostics = append(wb.Diagnostics, msg)
			log.Warn("sheet skipped", zap.String("sheet", sheet), zap.Error(err))
		}
	}

	log.Info("workbook loaded",
		zap.String("book", wb.BookName),
		zap.Int("sheets", len(wb.Sheets)),
		zap.Int("cells", len(wb.Values)),
		zap.Int("formulas", len(wb.Formulas)))

	return wb, nil
}

// loadSheet runs the dual-pass read: first evaluated values via row
// iteration, then a formula sweep over the sheet dimension. The second
// pass catches formula cells whose cached value is empty, which the row
// iteration can skip at row tails.
func loadSheet(f *excelize.File, sheet string, wb *Workbook) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}

	ext := Extent{}
	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			ref := models.CellRef{Sheet: sheet, Row: rowIdx + 1, Col: colIdx + 1}
			wb.Values[ref] = models.ParseValue(raw)
			ext.grow(ref)
		}
	}

	r1, c1, r2, c2, err := dimensionBounds(f, sheet)
	if err == nil {
		for row := r1; row <= r2; row++ {
			for col := c1; col <= c2; col++ {
				cellName, err := excelize.CoordinatesToCellName(col, row)
				if err != nil {
					continue
				}
				formula, _ := f.GetCellFormula(sheet, cellName)
				if formula == "" {
					continue
				}
				ref := models.CellRef{Sheet: sheet, Row: row, Col: col}
				wb.Formulas[ref] = normalizeFormula(formula)
				if _, ok := wb.Values[ref]; !ok {
					wb.Values[ref] = models.TypedValue{Kind: models.ValueEmpty}
				}
				ext.grow(ref)
			}
		}
	}

	wb.Extents[sheet] = ext
	return nil
}

func (e *Extent) grow(ref models.CellRef) {
	if ref.Row > e.MaxRow {
		e.MaxRow = ref.Row
	}
	if ref.Col > e.MaxCol {
		e.MaxCol = ref.Col
	}
}

// dimensionBounds resolves the sheet's declared dimension, e.g.
// "A1:D20", into coordinates.
func dimensionBounds(f *excelize.File, sheet string) (r1, c1, r2, c2 int, err error) {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if dim == "" {
		return 0, 0, 0, 0, fmt.Errorf("sheet %q has no dimension", sheet)
	}
	start, end, found := strings.Cut(dim, ":")
	if !found {
		end = start
	}
	c1, r1, err = excelize.CellNameToCoordinates(start)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	c2, r2, err = excelize.CellNameToCoordinates(end)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return r1, c1, r2, c2, nil
}

// normalizeFormula guarantees the leading formula marker so downstream
// consumers see one canonical form regardless of how the container
// stored the text.
func normalizeFormula(s string) string {
	if strings.HasPrefix(s, "=") {
		return s
	}
	return "=" + s
}
