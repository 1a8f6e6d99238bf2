package detect

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/auditkit/modelaudit/pkg/modelaudit/depgraph"
	"github.com/auditkit/modelaudit/pkg/modelaudit/loader"
	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// Engine runs the audit detectors. Detectors are mutually independent,
// read only the shared immutable structures, and each writes its own
// result slot, so they run concurrently without locking.
type Engine struct {
	wb       *loader.Workbook
	graph    *depgraph.Graph
	analysis *depgraph.Analysis
	build    *depgraph.Result
	policy   Policy
	log      *zap.Logger
}

// detectorResult is one detector's private output slot.
type detectorResult struct {
	issues      []models.Issue
	diagnostics []string
}

// New assembles an engine over the finished pipeline structures.
func New(wb *loader.Workbook, build *depgraph.Result, analysis *depgraph.Analysis, policy Policy, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		wb:       wb,
		graph:    build.Graph,
		analysis: analysis,
		build:    build,
		policy:   policy,
		log:      log,
	}
}

// Run executes every detector, concatenates their findings, attaches
// explanations and low-confidence markers, deduplicates by issue ID,
// and returns the list in its canonical order alongside detector
// diagnostics.
func (e *Engine) Run(ctx context.Context) ([]models.Issue, []string) {
	detectors := []func(*detectorResult){
		e.detectPlugs,
		e.detectBalance,
		e.detectErrorTokens,
		e.detectExternalRefs,
		e.detectBrokenRefs,
		e.detectCycles,
		e.detectOrphans,
		e.detectParseWarnings,
	}

	slots := make([]detectorResult, len(detectors))
	grp, _ := errgroup.WithContext(ctx)
	for i, d := range detectors {
		grp.Go(func() error {
			d(&slots[i])
			return nil
		})
	}
	_ = grp.Wait()

	var issues []models.Issue
	var diagnostics []string
	for _, slot := range slots {
		issues = append(issues, slot.issues...)
		diagnostics = append(diagnostics, slot.diagnostics...)
	}

	for i := range issues {
		explain(&issues[i])
		e.markConfidence(&issues[i])
	}

	issues = dedupe(issues)
	sortIssues(issues)

	e.log.Info("audit complete",
		zap.Int("issues", len(issues)),
		zap.Int("diagnostics", len(diagnostics)))
	return issues, diagnostics
}

// markConfidence downgrades findings whose evidence touches a cell with
// an untokenizable formula.
func (e *Engine) markConfidence(issue *models.Issue) {
	if issue.Kind == models.IssueParseWarning {
		issue.LowConfidence = true
		return
	}
	for _, ev := range issue.Evidence {
		if _, warned := e.build.ParseWarnings[ev.Ref]; warned {
			issue.LowConfidence = true
			return
		}
	}
}

// dedupe drops repeated issue IDs, keeping the first occurrence.
func dedupe(issues []models.Issue) []models.Issue {
	seen := make(map[string]struct{}, len(issues))
	out := issues[:0]
	for _, is := range issues {
		if _, dup := seen[is.ID]; dup {
			continue
		}
		seen[is.ID] = struct{}{}
		out = append(out, is)
	}
	return out
}

// sortIssues orders findings by severity (most severe first), then kind,
// then primary evidence coordinate. The order is total, so repeated runs
// on the same workbook emit identical lists.
func sortIssues(issues []models.Issue) {
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return primaryRef(a).Less(primaryRef(b))
	})
}

func primaryRef(is models.Issue) models.CellRef {
	if len(is.Evidence) == 0 {
		return models.CellRef{}
	}
	return is.Evidence[0].Ref
}

// evidence builds an evidence entry from the workbook record at ref.
func (e *Engine) evidence(ref models.CellRef) models.Evidence {
	rec := e.wb.Record(ref)
	return models.Evidence{
		Ref:     ref,
		Value:   rec.Value.Display(),
		Formula: rec.Formula,
	}
}
