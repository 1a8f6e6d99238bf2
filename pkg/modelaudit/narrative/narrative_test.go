package narrative

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

type stubSummarizer struct {
	text string
	err  error
	got  *models.Report
}

func (s *stubSummarizer) Summarize(_ context.Context, r *models.Report) (string, error) {
	s.got = r
	return s.text, s.err
}

func TestSummarizeNilSummarizer(t *testing.T) {
	_, err := Summarize(context.Background(), nil, &models.Report{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSummarizeDelegates(t *testing.T) {
	stub := &stubSummarizer{text: "two critical findings dominate"}
	r := &models.Report{BookName: "model.xlsx"}

	got, err := Summarize(context.Background(), stub, r)
	require.NoError(t, err)
	assert.Equal(t, "two critical findings dominate", got)
	assert.Same(t, r, stub.got)
}

func TestSummarizeError(t *testing.T) {
	stub := &stubSummarizer{err: errors.New("timeout")}
	_, err := Summarize(context.Background(), stub, &models.Report{})
	assert.Error(t, err)
}

func TestFindingsPrompt(t *testing.T) {
	r := &models.Report{
		BookName:   "model.xlsx",
		Complexity: models.ComplexityScore{Score: 3},
		Issues: []models.Issue{
			models.NewIssue(models.IssueBalanceImbalance, models.SeverityCritical,
				"balance sheet out of balance in column 3: assets differ from liabilities+equity by 25.00",
				models.Evidence{Ref: models.CellRef{Sheet: "BS", Row: 10, Col: 3}}),
			models.NewIssue(models.IssueOrphanedRegion, models.SeverityInfo,
				"formula is disconnected from the rest of the model"),
		},
	}
	got := FindingsPrompt(r)

	assert.Contains(t, got, "model.xlsx")
	assert.Contains(t, got, "complexity score: 3/5")
	assert.Contains(t, got, "## Critical (1)")
	assert.Contains(t, got, "balance_sheet_imbalance at BS!C10")
	assert.Contains(t, got, "orphaned_region at workbook", "issues without evidence fall back to a workbook-level location")
}
