package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// projectionRow builds a Model sheet with a period header row and one
// calculation row. Cells in the calculation row alternate between
// formulas and literals per the entries slice: a non-empty string is a
// literal value, an empty string becomes a formula.
func projectionRow(entries []string) map[string][]cell {
	cells := []cell{
		{1, 1, "Revenue Build", ""},
		{1, 2, "2023", ""},
		{1, 3, "2024E", ""},
		{1, 4, "2025E", ""},
		{1, 5, "2026E", ""},
		{1, 6, "2027E", ""},
		{1, 7, "2028E", ""},
	}
	for i, v := range entries {
		col := 3 + i
		if v == "" {
			cells = append(cells, cell{2, col, "110", "=B2*1.1"})
		} else {
			cells = append(cells, cell{2, col, v, ""})
		}
	}
	return map[string][]cell{"Model": cells}
}

func TestPlugInFormulaRow(t *testing.T) {
	wb := testWorkbook(projectionRow([]string{"", "", "999", "", ""}))
	issues, _ := runAudit(t, wb, DefaultPolicy())

	got := issuesOfKind(issues, models.IssueHardCodedPlug)
	require.Len(t, got, 1)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
	assert.Equal(t, ref("Model", 2, 5), got[0].Evidence[0].Ref)
	assert.Contains(t, got[0].Message, "999")
}

func TestPlugAllLiteralRowIgnored(t *testing.T) {
	wb := testWorkbook(projectionRow([]string{"100", "110", "121", "133", "146"}))
	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueHardCodedPlug),
		"an assumption row of literals is not a plug")
}

func TestPlugTooFewFormulas(t *testing.T) {
	wb := testWorkbook(projectionRow([]string{"", "", "999"}))
	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueHardCodedPlug),
		"two formulas are below the minimum formula count")
}

func TestPlugContinuationConsistentLiteral(t *testing.T) {
	// 100, 110 establish 10% growth; the literal 121 continues it and is
	// a transcribed value, not a plug. 999 breaks the pattern.
	wb := testWorkbook(map[string][]cell{
		"Model": {
			{1, 3, "2024E", ""},
			{2, 3, "100", "=A2"},
			{2, 4, "110", "=C2*1.1"},
			{2, 5, "121", ""},
			{2, 6, "999", ""},
			{2, 7, "146", "=F2*1.1"},
		},
	})
	issues, _ := runAudit(t, wb, DefaultPolicy())

	got := issuesOfKind(issues, models.IssueHardCodedPlug)
	require.Len(t, got, 1)
	assert.Equal(t, ref("Model", 2, 6), got[0].Evidence[0].Ref)
}

func TestPlugMinorityFormulaRowIgnored(t *testing.T) {
	// Three formulas among five literals: the row is mostly hand-entered
	// assumptions, so none of the literals count as plugs.
	wb := testWorkbook(projectionRow([]string{"", "", "999", "140", "150", "160", "170", ""}))
	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueHardCodedPlug),
		"a row that is mostly literals carries no formula pattern to break")
}

func TestPlugSkipsRawSheets(t *testing.T) {
	fixture := projectionRow([]string{"", "", "999", "", ""})
	fixture["Raw Data"] = fixture["Model"]
	delete(fixture, "Model")
	wb := testWorkbook(fixture)

	issues, _ := runAudit(t, wb, DefaultPolicy())
	assert.Empty(t, issuesOfKind(issues, models.IssueHardCodedPlug),
		"data-dump sheets are excluded from the plug scan")
}

func TestPlugFallbackColumnOffset(t *testing.T) {
	// No projection header anywhere: the scan starts past the policy's
	// fixed label+historical offset, so the literal in column B is
	// never considered.
	wb := testWorkbook(map[string][]cell{
		"Model": {
			{2, 2, "999", ""},
			{2, 4, "110", "=B2*1.1"},
			{2, 5, "121", "=D2*1.1"},
			{2, 6, "133", "=E2*1.1"},
			{2, 7, "888", ""},
		},
	})
	issues, _ := runAudit(t, wb, DefaultPolicy())

	got := issuesOfKind(issues, models.IssueHardCodedPlug)
	require.Len(t, got, 1)
	assert.Equal(t, ref("Model", 2, 7), got[0].Evidence[0].Ref)
}
