// Package output serializes audit reports for external consumers: JSON
// for the renderer and narrative layer, an xlsx datatape, and the
// append-only run history log. The core stays free of any document
// formatting knowledge; everything here consumes the plain Report.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// ToJSON serializes the report.
func ToJSON(r *models.Report, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// Summary renders the one-line human outcome. A clean run states so
// explicitly rather than producing an empty report.
func Summary(r *models.Report) string {
	if r.Clean() {
		return fmt.Sprintf("%s: no structural issues found (complexity %d/5)",
			r.BookName, r.Complexity.Score)
	}
	return fmt.Sprintf("%s: %d issue(s): %d critical, %d high, %d medium, %d info (complexity %d/5)",
		r.BookName,
		len(r.Issues),
		r.CountBySeverity(models.SeverityCritical),
		r.CountBySeverity(models.SeverityHigh),
		r.CountBySeverity(models.SeverityMedium),
		r.CountBySeverity(models.SeverityInfo),
		r.Complexity.Score)
}
