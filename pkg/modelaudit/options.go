// Package modelaudit audits spreadsheet-based financial models: it
// reconstructs the workbook's calculation structure as a dependency
// graph and runs deterministic structural checks against it.
package modelaudit

import (
	"go.uber.org/zap"

	"github.com/auditkit/modelaudit/pkg/modelaudit/detect"
)

// Mode selects how much of the pipeline runs.
type Mode string

const (
	// ModeFull runs the whole pipeline: graph construction, analysis,
	// and every detector.
	ModeFull Mode = "full"
	// ModeValuesOnly skips formula analysis entirely. This is the only
	// mode valid for value-only tabular inputs, and on workbooks it
	// restricts the audit to value-based checks.
	ModeValuesOnly Mode = "values"
)

// Options configures one audit run.
type Options struct {
	// Mode selects the pipeline scope. Defaults to ModeFull.
	Mode Mode
	// Policy overrides the label-matching policy. Nil uses the
	// compiled-in defaults.
	Policy *detect.Policy
	// Workers bounds parallel formula parsing. Zero or negative uses
	// one worker per CPU.
	Workers int
	// Logger receives structured progress logs. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the default run configuration.
func DefaultOptions() Options {
	return Options{Mode: ModeFull}
}
