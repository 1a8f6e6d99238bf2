package detect

import "github.com/auditkit/modelaudit/pkg/modelaudit/models"

// Score reduces graph statistics to the 1-5 complexity rating. The
// breakpoints are fixed and monotonic: more sheets, formulas, depth, or
// cross-sheet wiring can only raise the score. Absent statistics yield
// the lowest tier.
func Score(stats models.GraphStats) models.ComplexityScore {
	score := 1
	var rationale []string

	switch {
	case stats.SheetCount > 30:
		score += 2
		rationale = append(rationale, "high sheet count (>30)")
	case stats.SheetCount > 10:
		score++
		rationale = append(rationale, "moderate sheet count (>10)")
	}

	switch {
	case stats.FormulaCells > 10000:
		score += 2
		rationale = append(rationale, "massive calculation graph (>10k formulas)")
	case stats.FormulaCells > 2000:
		score++
		rationale = append(rationale, "high calculation density (>2k formulas)")
	}

	if stats.FormulaDensity() > 0.5 {
		score++
		rationale = append(rationale, "formula-dense sheets (>50% of cells)")
	}
	if stats.NodeCount > 0 && float64(stats.EdgeCount) > 1.5*float64(stats.NodeCount) {
		score++
		rationale = append(rationale, "high inter-dependency ratio")
	}
	if stats.MaxDepth > 15 {
		score++
		rationale = append(rationale, "deep calculation chains (depth >15)")
	}
	if stats.CrossSheetRatio() > 0.3 {
		score++
		rationale = append(rationale, "heavy cross-sheet wiring")
	}

	if score > 5 {
		score = 5
	}
	return models.ComplexityScore{Score: score, Rationale: rationale}
}
