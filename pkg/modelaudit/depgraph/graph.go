// Package depgraph builds and analyzes the directed dependency graph of
// a workbook: nodes are cell coordinates, edges point from a referenced
// cell to the cell whose formula references it.
package depgraph

import "github.com/auditkit/modelaudit/pkg/modelaudit/models"

// NodeInfo is the metadata kept per graph node.
type NodeInfo struct {
	// IsFormula marks nodes backed by a formula cell.
	IsFormula bool
	// Missing marks nodes created for a referenced coordinate with no
	// cell record. This is recorded data, not a fault.
	Missing bool
	// ParseWarning marks formula nodes whose formula could not be
	// tokenized. They keep their node but have no outgoing references.
	ParseWarning bool
}

type edgeKey struct{ from, to int }

// Graph stores the dependency graph as adjacency lists over a stable
// integer arena, so cyclic structures need no pointer cycles and the
// whole graph is shareable across concurrent detector reads.
type Graph struct {
	refs []models.CellRef
	ids  map[models.CellRef]int
	info []NodeInfo

	out [][]int // dependency -> dependents
	in  [][]int // dependent -> precedents

	edges      map[edgeKey]struct{}
	crossSheet int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		ids:   make(map[models.CellRef]int),
		edges: make(map[edgeKey]struct{}),
	}
}

// Ensure returns the node id for ref, creating the node if needed.
func (g *Graph) Ensure(ref models.CellRef) int {
	if id, ok := g.ids[ref]; ok {
		return id
	}
	id := len(g.refs)
	g.ids[ref] = id
	g.refs = append(g.refs, ref)
	g.info = append(g.info, NodeInfo{})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

// NodeID looks up the node for ref without creating it.
func (g *Graph) NodeID(ref models.CellRef) (int, bool) {
	id, ok := g.ids[ref]
	return id, ok
}

// Ref returns the coordinate of node id.
func (g *Graph) Ref(id int) models.CellRef { return g.refs[id] }

// Info returns the metadata of node id.
func (g *Graph) Info(id int) NodeInfo { return g.info[id] }

// SetInfo replaces the metadata of node id.
func (g *Graph) SetInfo(id int, info NodeInfo) { g.info[id] = info }

// AddEdge inserts a dependency edge from -> to. Insertion is idempotent:
// duplicate references from one formula collapse to a single edge.
func (g *Graph) AddEdge(from, to int) {
	k := edgeKey{from, to}
	if _, dup := g.edges[k]; dup {
		return
	}
	g.edges[k] = struct{}{}
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	if g.refs[from].Sheet != g.refs[to].Sheet {
		g.crossSheet++
	}
}

// HasEdge reports whether the dependency edge from -> to exists.
func (g *Graph) HasEdge(from, to int) bool {
	_, ok := g.edges[edgeKey{from, to}]
	return ok
}

// Len is the node count.
func (g *Graph) Len() int { return len(g.refs) }

// EdgeCount is the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// CrossSheetEdges counts edges whose endpoints live on different sheets.
func (g *Graph) CrossSheetEdges() int { return g.crossSheet }

// Dependents returns the nodes whose formulas reference id.
func (g *Graph) Dependents(id int) []int { return g.out[id] }

// Precedents returns the nodes referenced by id's formula.
func (g *Graph) Precedents(id int) []int { return g.in[id] }
