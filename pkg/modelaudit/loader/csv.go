package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// ValuesOnlySheet is the synthetic sheet name assigned to tabular inputs
// that have no worksheet concept of their own.
const ValuesOnlySheet = "Sheet1"

// LoadValuesOnly reads a plain tabular file (CSV) into a values-only
// Workbook. Such inputs cannot carry formulas, so callers requesting
// formula analysis must reject them with ErrUnsupportedFormat before
// calling this.
func LoadValuesOnly(path string, log *zap.Logger) (*Workbook, error) {
	if log == nil {
		log = zap.NewNop()
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	if filepath.Ext(path) == ".tsv" {
		r.Comma = '\t'
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}

	wb := &Workbook{
		BookName: filepath.Base(path),
		Sheets:   []string{ValuesOnlySheet},
		Values:   make(map[models.CellRef]models.TypedValue),
		Formulas: make(map[models.CellRef]string),
		Extents:  make(map[string]Extent),
	}

	ext := Extent{}
	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			ref := models.CellRef{Sheet: ValuesOnlySheet, Row: rowIdx + 1, Col: colIdx + 1}
			wb.Values[ref] = models.ParseValue(raw)
			if ref.Row > ext.MaxRow {
				ext.MaxRow = ref.Row
			}
			if ref.Col > ext.MaxCol {
				ext.MaxCol = ref.Col
			}
		}
	}
	wb.Extents[ValuesOnlySheet] = ext

	log.Info("values-only table loaded",
		zap.String("book", wb.BookName),
		zap.Int("cells", len(wb.Values)))

	return wb, nil
}

// IsValuesOnlyPath reports whether the file extension marks a value-only
// tabular format.
func IsValuesOnlyPath(path string) bool {
	switch filepath.Ext(path) {
	case ".csv", ".tsv":
		return true
	}
	return false
}
