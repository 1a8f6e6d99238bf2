package depgraph

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/auditkit/modelaudit/pkg/modelaudit/formula"
	"github.com/auditkit/modelaudit/pkg/modelaudit/loader"
	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// External records one formula's reference to another workbook.
type External struct {
	// Ref is the formula cell holding the reference.
	Ref models.CellRef
	// Target is the raw external reference text.
	Target string
}

// Result is the outcome of graph construction.
type Result struct {
	Graph *Graph
	// Externals lists external-workbook references found during parsing.
	// They never become graph nodes.
	Externals []External
	// ParseWarnings maps formula cells that could not be tokenized to a
	// description of the failure.
	ParseWarnings map[models.CellRef]string
}

// parsed is the per-formula parse outcome, kept in formula-cell order so
// the merge is deterministic regardless of worker scheduling.
type parsed struct {
	ref       models.CellRef
	deps      []models.CellRef
	externals []string
	err       error
}

// Build constructs the dependency graph from the workbook snapshot.
// Individual formulas parse in parallel across workers; graph insertion
// is sequential over cells sorted by coordinate, so edge-insertion order
// never varies between runs. Missing reference targets become nodes
// flagged Missing rather than errors.
func Build(ctx context.Context, wb *loader.Workbook, workers int, log *zap.Logger) *Result {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cells := make([]models.CellRef, 0, len(wb.Values))
	for ref := range wb.Values {
		cells = append(cells, ref)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

	formulaCells := make([]models.CellRef, 0, len(wb.Formulas))
	for _, ref := range cells {
		if _, ok := wb.Formulas[ref]; ok {
			formulaCells = append(formulaCells, ref)
		}
	}

	results := make([]parsed, len(formulaCells))
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i, ref := range formulaCells {
		grp.Go(func() error {
			deps, externals, err := formula.References(wb.Formulas[ref], ref.Sheet, wb.Extents)
			results[i] = parsed{ref: ref, deps: deps, externals: externals, err: err}
			return nil
		})
	}
	// Workers never return errors; parse failures are per-cell data.
	_ = grp.Wait()

	res := &Result{
		Graph:         New(),
		ParseWarnings: make(map[models.CellRef]string),
	}
	g := res.Graph

	// Every populated cell gets a node, formula or not, so literal leaf
	// inputs and terminal outputs are both representable.
	for _, ref := range cells {
		id := g.Ensure(ref)
		info := g.Info(id)
		_, info.IsFormula = wb.Formulas[ref]
		g.SetInfo(id, info)
	}

	for _, p := range results {
		cellID, _ := g.NodeID(p.ref)
		if p.err != nil {
			info := g.Info(cellID)
			info.ParseWarning = true
			g.SetInfo(cellID, info)
			res.ParseWarnings[p.ref] = p.err.Error()
			continue
		}
		for _, dep := range p.deps {
			depID := g.Ensure(dep)
			if _, known := wb.Values[dep]; !known {
				if _, known = wb.Formulas[dep]; !known {
					info := g.Info(depID)
					info.Missing = true
					g.SetInfo(depID, info)
				}
			}
			g.AddEdge(depID, cellID)
		}
		for _, ext := range p.externals {
			res.Externals = append(res.Externals, External{Ref: p.ref, Target: ext})
		}
	}

	log.Info("dependency graph built",
		zap.Int("nodes", g.Len()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("parse_warnings", len(res.ParseWarnings)),
		zap.Int("external_refs", len(res.Externals)))

	return res
}
