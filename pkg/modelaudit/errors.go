package modelaudit

import (
	"fmt"

	"github.com/auditkit/modelaudit/pkg/modelaudit/loader"
)

// ErrUnreadableWorkbook indicates the input is not a readable workbook
// container. Fatal: no report is produced.
var ErrUnreadableWorkbook = loader.ErrUnreadableWorkbook

// ErrUnsupportedFormat indicates formula analysis was requested for an
// input type that cannot carry formulas.
var ErrUnsupportedFormat = loader.ErrUnsupportedFormat

// AuditError wraps a failure with the pipeline stage it occurred in.
type AuditError struct {
	Stage string // "load", "output"
	Path  string
	Err   error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("audit %s failed for %q: %v", e.Stage, e.Path, e.Err)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}
