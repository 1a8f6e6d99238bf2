package depgraph

import (
	"sort"

	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

// Analysis holds memoized graph-theoretic query results over a finished
// graph. The graph is never mutated after analysis begins, so one
// Analysis is safely shareable across concurrent detector reads.
type Analysis struct {
	g       *Graph
	comps   [][]int
	cycles  [][]int
	inCycle []bool
	depths  []int
}

// Analyze runs strongly-connected component detection and longest-path
// depth over the graph and caches the results.
func Analyze(g *Graph) *Analysis {
	a := &Analysis{g: g}
	a.comps = g.sccs()
	a.inCycle = make([]bool, g.Len())
	for _, comp := range a.comps {
		cyclic := len(comp) > 1 || g.HasEdge(comp[0], comp[0])
		if !cyclic {
			continue
		}
		for _, v := range comp {
			a.inCycle[v] = true
		}
		a.cycles = append(a.cycles, comp)
	}
	sort.Slice(a.cycles, func(i, j int) bool {
		return g.Ref(a.cycles[i][0]).Less(g.Ref(a.cycles[j][0]))
	})
	a.depths = a.computeDepths()
	return a
}

// Cycles returns every strongly-connected component that contains a
// cycle, a self-loop counting as a one-node cycle. All cycles within one
// component are reported together; elementary cycles are never
// enumerated.
func (a *Analysis) Cycles() [][]int { return a.cycles }

// InCycle reports whether node id sits inside a cycle.
func (a *Analysis) InCycle(id int) bool { return a.inCycle[id] }

// Depth is the longest path from any leaf input to id. The second
// return is false for nodes inside a cycle, where depth is undefined.
func (a *Analysis) Depth(id int) (int, bool) {
	if a.inCycle[id] {
		return 0, false
	}
	return a.depths[id], true
}

// MaxDepth is the largest defined depth in the graph, 0 when every node
// is a leaf or cyclic.
func (a *Analysis) MaxDepth() int {
	max := 0
	for id, d := range a.depths {
		if !a.inCycle[id] && d > max {
			max = d
		}
	}
	return max
}

// Orphans returns formula nodes with no incoming and no outgoing edges:
// calculations disconnected from both inputs and outputs. Deliberately
// conservative so legitimate simple calculations are not flagged. Nodes
// whose formulas failed to tokenize are excluded, since their emptiness
// is an artifact of the parse failure.
func (a *Analysis) Orphans() []int {
	var out []int
	for id := 0; id < a.g.Len(); id++ {
		info := a.g.Info(id)
		if !info.IsFormula || info.ParseWarning {
			continue
		}
		if len(a.g.Precedents(id)) == 0 && len(a.g.Dependents(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Stats aggregates the counts that feed the complexity scorer.
func (a *Analysis) Stats(sheetCount, totalCells, formulaCells int) models.GraphStats {
	return models.GraphStats{
		SheetCount:      sheetCount,
		TotalCells:      totalCells,
		FormulaCells:    formulaCells,
		NodeCount:       a.g.Len(),
		EdgeCount:       a.g.EdgeCount(),
		CrossSheetEdges: a.g.CrossSheetEdges(),
		MaxDepth:        a.MaxDepth(),
		CycleCount:      len(a.cycles),
	}
}

// computeDepths assigns longest-path-from-leaf depths over the acyclic
// part of the graph with a Kahn traversal. Cyclic precedents contribute
// nothing; cyclic nodes keep a -1 sentinel.
func (a *Analysis) computeDepths() []int {
	n := a.g.Len()
	depth := make([]int, n)
	indeg := make([]int, n)
	for v := 0; v < n; v++ {
		if a.inCycle[v] {
			depth[v] = -1
			continue
		}
		for _, p := range a.g.Precedents(v) {
			if !a.inCycle[p] {
				indeg[v]++
			}
		}
	}

	queue := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if !a.inCycle[v] && indeg[v] == 0 {
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range a.g.Dependents(v) {
			if a.inCycle[w] {
				continue
			}
			if depth[v]+1 > depth[w] {
				depth[w] = depth[v] + 1
			}
			if indeg[w]--; indeg[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
	return depth
}

// sccs computes strongly-connected components with an iterative Tarjan
// walk. Component node lists come back sorted by id.
func (g *Graph) sccs() [][]int {
	n := g.Len()
	index := make([]int, n) // 0 means unvisited
	low := make([]int, n)
	onStack := make([]bool, n)
	stack := make([]int, 0, n)
	var comps [][]int
	next := 1

	type frame struct{ v, i int }
	var frames []frame

	for start := 0; start < n; start++ {
		if index[start] != 0 {
			continue
		}
		index[start], low[start] = next, next
		next++
		stack = append(stack, start)
		onStack[start] = true
		frames = append(frames[:0], frame{start, 0})

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.i < len(g.out[f.v]) {
				w := g.out[f.v][f.i]
				f.i++
				if index[w] == 0 {
					index[w], low[w] = next, next
					next++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, frame{w, 0})
				} else if onStack[w] && index[w] < low[f.v] {
					low[f.v] = index[w]
				}
				continue
			}

			v := f.v
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				if p := &frames[len(frames)-1]; low[v] < low[p.v] {
					low[p.v] = low[v]
				}
			}
			if low[v] == index[v] {
				var comp []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				sort.Ints(comp)
				comps = append(comps, comp)
			}
		}
	}
	return comps
}
