package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

const (
	summarySheet  = "Executive Summary"
	findingsSheet = "Findings"
)

// WriteDatatape writes the tabular findings export as an xlsx workbook
// with a summary sheet and a findings sheet.
func WriteDatatape(r *models.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("datatape: %w", err)
	}
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return fmt.Errorf("datatape: %w", err)
	}

	summary := [][]interface{}{
		{"Model Audit Datatape"},
		{},
		{"Filename", r.BookName},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04")},
		{"Complexity Score", fmt.Sprintf("%d/5", r.Complexity.Score)},
		{"Complexity Drivers", strings.Join(r.Complexity.Rationale, ", ")},
		{"Total Issues", len(r.Issues)},
		{"Critical", r.CountBySeverity(models.SeverityCritical)},
		{"High", r.CountBySeverity(models.SeverityHigh)},
		{"Sheets", r.Stats.SheetCount},
		{"Formula Cells", r.Stats.FormulaCells},
		{"Max Depth", r.Stats.MaxDepth},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("datatape: %w", err)
		}
	}

	header := []interface{}{"Severity", "Kind", "Location", "Message", "Why", "Fix", "Low Confidence"}
	if err := f.SetSheetRow(findingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("datatape: %w", err)
	}
	for i, is := range r.Issues {
		loc := ""
		if len(is.Evidence) > 0 {
			loc = is.Evidence[0].Ref.String()
		}
		row := []interface{}{
			is.Severity.String(), string(is.Kind), loc, is.Message, is.Why, is.Fix, is.LowConfidence,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(findingsSheet, cell, &row); err != nil {
			return fmt.Errorf("datatape: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("datatape: %w", err)
	}
	return nil
}
