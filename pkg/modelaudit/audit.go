package modelaudit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/auditkit/modelaudit/pkg/modelaudit/depgraph"
	"github.com/auditkit/modelaudit/pkg/modelaudit/detect"
	"github.com/auditkit/modelaudit/pkg/modelaudit/loader"
	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// Run executes one audit: load the workbook, build and analyze the
// dependency graph, run the detectors, and score complexity. Only an
// unreadable input is fatal; every structural finding comes back inside
// the report, so a structurally readable workbook always yields one.
func Run(ctx context.Context, path string, opts Options) (*models.Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = ModeFull
	}
	policy := detect.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	wb, err := load(path, opts, log)
	if err != nil {
		return nil, &AuditError{Stage: "load", Path: path, Err: err}
	}

	build := depgraph.Build(ctx, wb, opts.Workers, log)
	analysis := depgraph.Analyze(build.Graph)

	engine := detect.New(wb, build, analysis, policy, log)
	issues, diagnostics := engine.Run(ctx)

	stats := analysis.Stats(len(wb.Sheets), len(wb.Values), len(wb.Formulas))
	score := detect.Score(stats)

	report := &models.Report{
		BookName:    wb.BookName,
		GeneratedAt: time.Now(),
		Issues:      issues,
		Stats:       stats,
		Complexity:  score,
		Ingestion: models.IngestionSummary{
			SheetCount:  len(wb.Sheets),
			SheetNames:  wb.Sheets,
			Diagnostics: append(wb.Diagnostics, diagnostics...),
		},
	}

	log.Info("audit run finished",
		zap.String("book", report.BookName),
		zap.Int("issues", len(report.Issues)),
		zap.Int("complexity", report.Complexity.Score))
	return report, nil
}

// load picks the loader for the input type. Value-only tabular files
// are accepted only when formula analysis was not requested; in
// values-only mode a workbook's formula table is dropped so the audit
// restricts itself to value-based checks.
func load(path string, opts Options, log *zap.Logger) (*loader.Workbook, error) {
	if loader.IsValuesOnlyPath(path) {
		if opts.Mode != ModeValuesOnly {
			return nil, loader.ErrUnsupportedFormat
		}
		return loader.LoadValuesOnly(path, log)
	}

	wb, err := loader.Load(path, log)
	if err != nil {
		return nil, err
	}
	if opts.Mode == ModeValuesOnly {
		wb.Formulas = make(map[models.CellRef]string)
	}
	return wb, nil
}
