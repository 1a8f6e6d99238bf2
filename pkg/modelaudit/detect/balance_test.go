package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// balanceSheet builds a minimal fixture with labeled totals in column A
// and one period per value column starting at C.
func balanceSheet(assets, liabilities, equity []string) map[string][]cell {
	cells := []cell{
		{1, 1, "Total Assets", ""},
		{2, 1, "Total Liabilities", ""},
		{3, 1, "Total Equity", ""},
	}
	for i := range assets {
		col := 3 + i
		cells = append(cells,
			cell{1, col, assets[i], ""},
			cell{2, col, liabilities[i], ""},
			cell{3, col, equity[i], ""},
		)
	}
	return map[string][]cell{"Balance Sheet": cells}
}

func TestBalanceInBalance(t *testing.T) {
	wb := testWorkbook(balanceSheet(
		[]string{"100"}, []string{"60"}, []string{"40"},
	))
	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueBalanceImbalance))
}

func TestBalanceToleranceBoundary(t *testing.T) {
	tests := []struct {
		name   string
		equity string
		want   int
	}{
		{"delta exactly at tolerance", "39", 0},
		{"delta just past tolerance", "38.99", 1},
		{"delta well past tolerance", "35", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := testWorkbook(balanceSheet(
				[]string{"100"}, []string{"60"}, []string{tt.equity},
			))
			issues, _ := runAudit(t, wb, DefaultPolicy())
			got := issuesOfKind(issues, models.IssueBalanceImbalance)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestBalancePerPeriodColumn(t *testing.T) {
	wb := testWorkbook(balanceSheet(
		[]string{"100", "200", "300"},
		[]string{"60", "120", "180"},
		[]string{"40", "70", "120"},
	))
	issues, _ := runAudit(t, wb, DefaultPolicy())

	got := issuesOfKind(issues, models.IssueBalanceImbalance)
	require.Len(t, got, 1, "only the middle period is out of balance")
	assert.Equal(t, models.SeverityCritical, got[0].Severity)
	assert.Contains(t, got[0].Message, "column 4")
	assert.Contains(t, got[0].Message, "10.00")

	require.Len(t, got[0].Evidence, 3)
	assert.Equal(t, ref("Balance Sheet", 1, 4), got[0].Evidence[0].Ref)
}

func TestBalanceCombinedLabel(t *testing.T) {
	wb := testWorkbook(map[string][]cell{
		"Balance Sheet": {
			{1, 1, "Total Assets", ""},
			{1, 3, "500", ""},
			{2, 1, "Total Liabilities and Equity", ""},
			{2, 3, "490", ""},
		},
	})
	issues, _ := runAudit(t, wb, DefaultPolicy())

	got := issuesOfKind(issues, models.IssueBalanceImbalance)
	require.Len(t, got, 1)
	require.Len(t, got[0].Evidence, 2)
	assert.Equal(t, ref("Balance Sheet", 2, 3), got[0].Evidence[1].Ref)
}

func TestBalanceCombinedRowWinsOverStandalone(t *testing.T) {
	// Both label styles coexist; the combined total row decides the
	// check even though the standalone rows sum differently.
	wb := testWorkbook(map[string][]cell{
		"Balance Sheet": {
			{1, 1, "Total Assets", ""},
			{1, 3, "100", ""},
			{2, 1, "Total Liabilities", ""},
			{2, 3, "60", ""},
			{3, 1, "Total Equity", ""},
			{3, 3, "30", ""},
			{4, 1, "Total Liabilities and Equity", ""},
			{4, 3, "100", ""},
		},
	})
	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueBalanceImbalance))
}

func TestBalanceMissingLabelsDiagnostic(t *testing.T) {
	wb := testWorkbook(map[string][]cell{
		"Balance Sheet": {
			{1, 1, "Cash", ""},
			{1, 3, "500", ""},
		},
	})
	issues, diagnostics := runAudit(t, wb, DefaultPolicy())

	assert.Empty(t, issuesOfKind(issues, models.IssueBalanceImbalance))
	found := false
	for _, d := range diagnostics {
		if strings.Contains(d, "no assets total label") {
			found = true
		}
	}
	assert.True(t, found, "missing labels must surface as a diagnostic, not an error")
}

func TestBalanceNoBalanceSheet(t *testing.T) {
	wb := testWorkbook(map[string][]cell{
		"Model": {{1, 1, "100", ""}},
	})
	issues, diagnostics := runAudit(t, wb, DefaultPolicy())

	assert.Empty(t, issuesOfKind(issues, models.IssueBalanceImbalance))
	require.NotEmpty(t, diagnostics)
	assert.Contains(t, diagnostics[0], "balance sheet not found")
}

func TestBalanceSkipsNonNumericPeriods(t *testing.T) {
	wb := testWorkbook(map[string][]cell{
		"Balance Sheet": {
			{1, 1, "Total Assets", ""},
			{1, 3, "FY24", ""},
			{1, 4, "100", ""},
			{2, 1, "Total Liabilities and Equity", ""},
			{2, 3, "FY24", ""},
			{2, 4, "100", ""},
		},
	})
	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueBalanceImbalance))
}
