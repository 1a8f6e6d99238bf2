package models

import "time"

// GraphStats aggregates dependency-graph counts for complexity scoring.
type GraphStats struct {
	// SheetCount is the number of worksheets in the workbook.
	SheetCount int `json:"sheet_count"`
	// TotalCells is the number of populated cells across all sheets.
	TotalCells int `json:"total_cells"`
	// FormulaCells is the number of formula cells.
	FormulaCells int `json:"formula_cells"`
	// NodeCount is the number of graph nodes, including nodes created
	// for dangling references.
	NodeCount int `json:"node_count"`
	// EdgeCount is the number of dependency edges.
	EdgeCount int `json:"edge_count"`
	// CrossSheetEdges counts edges whose endpoints live on different sheets.
	CrossSheetEdges int `json:"cross_sheet_edges"`
	// MaxDepth is the longest leaf-to-node path over acyclic nodes.
	MaxDepth int `json:"max_depth"`
	// CycleCount is the number of strongly-connected components with
	// more than one node, plus self-loops.
	CycleCount int `json:"cycle_count"`
}

// FormulaDensity is formula cells over populated cells, 0 for an empty
// workbook.
func (s GraphStats) FormulaDensity() float64 {
	if s.TotalCells == 0 {
		return 0
	}
	return float64(s.FormulaCells) / float64(s.TotalCells)
}

// CrossSheetRatio is cross-sheet edges over all edges, 0 for an edgeless
// graph.
func (s GraphStats) CrossSheetRatio() float64 {
	if s.EdgeCount == 0 {
		return 0
	}
	return float64(s.CrossSheetEdges) / float64(s.EdgeCount)
}

// ComplexityScore is the 1-5 summary metric with the breakpoints that
// drove it.
type ComplexityScore struct {
	// Score is the 1-5 rating.
	Score int `json:"score"`
	// Rationale names the breakpoints that raised the score.
	Rationale []string `json:"rationale,omitempty"`
}

// IngestionSummary describes what the loader managed to read.
type IngestionSummary struct {
	// SheetCount is the number of sheets loaded.
	SheetCount int `json:"sheet_count"`
	// SheetNames lists the loaded sheets in workbook order.
	SheetNames []string `json:"sheet_names"`
	// Diagnostics holds non-fatal loader and detector notes, such as a
	// sheet that failed to read or a balance sheet that was not found.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Report is the complete result of one audit run: plain data for the
// external renderer and narrative layer.
type Report struct {
	// BookName is the workbook file name without its path.
	BookName string `json:"book_name"`
	// GeneratedAt is the audit run timestamp.
	GeneratedAt time.Time `json:"generated_at"`
	// Issues is the ordered, deduplicated finding list.
	Issues []Issue `json:"issues"`
	// Stats is the graph statistics snapshot.
	Stats GraphStats `json:"stats"`
	// Complexity is the 1-5 score with rationale.
	Complexity ComplexityScore `json:"complexity"`
	// Ingestion summarizes the load phase.
	Ingestion IngestionSummary `json:"ingestion"`
}

// Clean reports whether the run found no structural issues. A clean run
// still produces an explicit report rather than an empty one.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0
}

// CountBySeverity returns the number of issues at the given severity.
func (r *Report) CountBySeverity(sev Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}
