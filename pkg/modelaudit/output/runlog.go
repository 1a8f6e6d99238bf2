package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

var runLogHeader = []string{"Timestamp", "Filename", "Complexity_Score", "Critical_Issues", "Total_Issues"}

// AppendRunLog appends one line per audit run to a persistent CSV
// history, writing the header when the file is new.
func AppendRunLog(r *models.Report, path string) error {
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(runLogHeader); err != nil {
			return fmt.Errorf("run log: %w", err)
		}
	}
	rec := []string{
		r.GeneratedAt.Format("2006-01-02 15:04:05"),
		r.BookName,
		strconv.Itoa(r.Complexity.Score),
		strconv.Itoa(r.CountBySeverity(models.SeverityCritical)),
		strconv.Itoa(len(r.Issues)),
	}
	if err := w.Write(rec); err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	w.Flush()
	return w.Error()
}
