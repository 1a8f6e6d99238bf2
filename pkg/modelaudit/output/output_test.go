package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		BookName:    "model.xlsx",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Issues: []models.Issue{
			models.NewIssue(models.IssueBalanceImbalance, models.SeverityCritical,
				"balance sheet out of balance in column 3: assets differ from liabilities+equity by 25.00",
				models.Evidence{Ref: models.CellRef{Sheet: "BS", Row: 1, Col: 3}, Value: "100"}),
			models.NewIssue(models.IssueOrphanedRegion, models.SeverityInfo,
				"formula is disconnected from the rest of the model",
				models.Evidence{Ref: models.CellRef{Sheet: "Model", Row: 5, Col: 5}, Formula: "=1+2"}),
		},
		Stats: models.GraphStats{
			SheetCount:   3,
			TotalCells:   40,
			FormulaCells: 12,
			NodeCount:    45,
			EdgeCount:    30,
			MaxDepth:     4,
		},
		Complexity: models.ComplexityScore{Score: 1},
		Ingestion: models.IngestionSummary{
			SheetCount: 3,
			SheetNames: []string{"Model", "BS", "Inputs"},
		},
	}
}

func TestToJSONRoundTrip(t *testing.T) {
	r := sampleReport()
	data, err := ToJSON(r, false)
	require.NoError(t, err)

	var decoded models.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.BookName, decoded.BookName)
	require.Len(t, decoded.Issues, 2)
	assert.Equal(t, r.Issues[0].ID, decoded.Issues[0].ID)
	assert.Equal(t, models.SeverityCritical, decoded.Issues[0].Severity)
}

func TestToJSONPretty(t *testing.T) {
	data, err := ToJSON(sampleReport(), true)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n  "))
}

func TestSummary(t *testing.T) {
	r := sampleReport()
	got := Summary(r)
	assert.Contains(t, got, "model.xlsx")
	assert.Contains(t, got, "2 issue(s)")
	assert.Contains(t, got, "1 critical")
	assert.Contains(t, got, "complexity 1/5")
}

func TestSummaryClean(t *testing.T) {
	r := sampleReport()
	r.Issues = nil
	got := Summary(r)
	assert.Contains(t, got, "no structural issues found")
}

func TestWriteDatatape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datatape.xlsx")
	require.NoError(t, WriteDatatape(sampleReport(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Executive Summary", "Findings"}, f.GetSheetList())

	rows, err := f.GetRows("Findings")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per issue")
	assert.Equal(t, "Severity", rows[0][0])
	assert.Equal(t, "Critical", rows[1][0])
	assert.Equal(t, "BS!C1", rows[1][2])

	name, err := f.GetCellValue("Executive Summary", "C4")
	require.NoError(t, err)
	assert.Equal(t, "model.xlsx", name)
}

func TestAppendRunLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_history.csv")

	require.NoError(t, AppendRunLog(sampleReport(), path))
	require.NoError(t, AppendRunLog(sampleReport(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header written once, one record per run")
	assert.Equal(t, runLogHeader, records[0])
	assert.Equal(t, "model.xlsx", records[1][1])
	assert.Equal(t, "1", records[1][2])
	assert.Equal(t, "2", records[1][4])
	assert.Equal(t, records[1], records[2])
}
