// Package narrative is the optional one-way boundary to a text
// generation service. The audit core never depends on it: all results
// are fully computed before a summarizer sees them, and its output is
// never fed back into the pipeline.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// ErrUnavailable indicates no summarizer capability is wired in or the
// configured one cannot be reached. Audit results remain valid.
var ErrUnavailable = errors.New("narrative summarizer unavailable")

// Summarizer generates a narrative analysis of a finished report.
type Summarizer interface {
	Summarize(ctx context.Context, r *models.Report) (string, error)
}

// Summarize guards the optional capability: a nil summarizer fails with
// ErrUnavailable instead of panicking.
func Summarize(ctx context.Context, s Summarizer, r *models.Report) (string, error) {
	if s == nil {
		return "", ErrUnavailable
	}
	return s.Summarize(ctx, r)
}

// FindingsPrompt renders the report as the structured text handed to a
// summarizer: findings grouped by severity with locations and details,
// plus the complexity score. This is the entire surface the narrative
// layer sees.
func FindingsPrompt(r *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Audit findings for financial model: %s\n", r.BookName)
	fmt.Fprintf(&b, "Model complexity score: %d/5\n", r.Complexity.Score)

	for _, sev := range []models.Severity{
		models.SeverityCritical,
		models.SeverityHigh,
		models.SeverityMedium,
		models.SeverityInfo,
	} {
		fmt.Fprintf(&b, "\n## %s (%d)\n", sev, r.CountBySeverity(sev))
		for _, is := range r.Issues {
			if is.Severity != sev {
				continue
			}
			loc := "workbook"
			if len(is.Evidence) > 0 {
				loc = is.Evidence[0].Ref.String()
			}
			fmt.Fprintf(&b, "- %s at %s: %s\n", is.Kind, loc, is.Message)
		}
	}
	return b.String()
}
