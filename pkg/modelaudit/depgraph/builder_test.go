package depgraph

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/modelaudit/pkg/modelaudit/loader"
	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

func ref(sheet string, row, col int) models.CellRef {
	return models.CellRef{Sheet: sheet, Row: row, Col: col}
}

// testWorkbook builds a snapshot from literal values and formulas,
// deriving extents the way the loader would.
func testWorkbook(values map[models.CellRef]float64, formulas map[models.CellRef]string) *loader.Workbook {
	wb := &loader.Workbook{
		BookName: "test.xlsx",
		Values:   make(map[models.CellRef]models.TypedValue),
		Formulas: make(map[models.CellRef]string),
		Extents:  make(map[string]loader.Extent),
	}
	sheets := make(map[string]bool)
	grow := func(r models.CellRef) {
		ext := wb.Extents[r.Sheet]
		if r.Row > ext.MaxRow {
			ext.MaxRow = r.Row
		}
		if r.Col > ext.MaxCol {
			ext.MaxCol = r.Col
		}
		wb.Extents[r.Sheet] = ext
		if !sheets[r.Sheet] {
			sheets[r.Sheet] = true
			wb.Sheets = append(wb.Sheets, r.Sheet)
		}
	}
	for r, v := range values {
		wb.Values[r] = models.TypedValue{Kind: models.ValueNumber, Number: v}
		grow(r)
	}
	for r, f := range formulas {
		wb.Formulas[r] = f
		if _, ok := wb.Values[r]; !ok {
			wb.Values[r] = models.TypedValue{Kind: models.ValueEmpty}
		}
		grow(r)
	}
	return wb
}

func TestBuildEdgeInvariant(t *testing.T) {
	wb := testWorkbook(
		map[models.CellRef]float64{
			ref("Sheet1", 1, 1): 10,
			ref("Sheet1", 2, 1): 20,
		},
		map[models.CellRef]string{
			ref("Sheet1", 3, 1): "=A1+A2",
		},
	)
	res := Build(context.Background(), wb, 1, nil)
	g := res.Graph

	target, ok := g.NodeID(ref("Sheet1", 3, 1))
	require.True(t, ok)
	a1, _ := g.NodeID(ref("Sheet1", 1, 1))
	a2, _ := g.NodeID(ref("Sheet1", 2, 1))

	assert.ElementsMatch(t, []int{a1, a2}, g.Precedents(target),
		"every resolved reference must produce exactly one incoming edge")
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.Info(target).IsFormula)
	assert.False(t, g.Info(a1).IsFormula)
}

func TestBuildEdgeIdempotent(t *testing.T) {
	wb := testWorkbook(
		map[models.CellRef]float64{ref("Sheet1", 1, 1): 1},
		map[models.CellRef]string{ref("Sheet1", 2, 1): "=A1+A1*SUM(A1:A1)"},
	)
	res := Build(context.Background(), wb, 1, nil)
	assert.Equal(t, 1, res.Graph.EdgeCount(),
		"duplicate references to one cell collapse to a single edge")
}

func TestBuildMissingReference(t *testing.T) {
	wb := testWorkbook(
		nil,
		map[models.CellRef]string{ref("Sheet1", 1, 1): "=MissingSheet!B2"},
	)
	res := Build(context.Background(), wb, 1, nil)
	g := res.Graph

	missing, ok := g.NodeID(ref("MissingSheet", 2, 2))
	require.True(t, ok, "a dangling reference still creates a node")
	assert.True(t, g.Info(missing).Missing)

	target, _ := g.NodeID(ref("Sheet1", 1, 1))
	assert.True(t, g.HasEdge(missing, target))
}

func TestBuildParseWarning(t *testing.T) {
	wb := testWorkbook(
		nil,
		map[models.CellRef]string{ref("Sheet1", 1, 1): "="},
	)
	res := Build(context.Background(), wb, 1, nil)

	id, ok := res.Graph.NodeID(ref("Sheet1", 1, 1))
	require.True(t, ok, "an untokenizable formula keeps its node")
	assert.True(t, res.Graph.Info(id).ParseWarning)
	assert.Empty(t, res.Graph.Precedents(id))
	assert.Contains(t, res.ParseWarnings, ref("Sheet1", 1, 1))
}

func TestBuildExternals(t *testing.T) {
	wb := testWorkbook(
		nil,
		map[models.CellRef]string{ref("Sheet1", 1, 1): "=[FactSet.xlsx]Data!B2*2"},
	)
	res := Build(context.Background(), wb, 1, nil)
	require.Len(t, res.Externals, 1)
	assert.Equal(t, ref("Sheet1", 1, 1), res.Externals[0].Ref)
	assert.Contains(t, res.Externals[0].Target, "FactSet.xlsx")
	assert.Equal(t, 0, res.Graph.EdgeCount())
}

func TestBuildDeterministic(t *testing.T) {
	values := map[models.CellRef]float64{}
	formulas := map[models.CellRef]string{}
	for row := 1; row <= 20; row++ {
		values[ref("Sheet1", row, 1)] = float64(row)
		formulas[ref("Sheet1", row, 2)] = "=A" + strconv.Itoa(row) + "*2"
	}
	wb := testWorkbook(values, formulas)

	a := Build(context.Background(), wb, 4, nil)
	b := Build(context.Background(), wb, 1, nil)

	require.Equal(t, a.Graph.Len(), b.Graph.Len())
	for id := 0; id < a.Graph.Len(); id++ {
		assert.Equal(t, a.Graph.Ref(id), b.Graph.Ref(id),
			"node numbering must not depend on worker count")
	}
	assert.Equal(t, a.Graph.EdgeCount(), b.Graph.EdgeCount())
}

func TestBuildCrossSheetEdges(t *testing.T) {
	wb := testWorkbook(
		map[models.CellRef]float64{ref("Inputs", 1, 1): 5},
		map[models.CellRef]string{
			ref("Model", 1, 1): "=Inputs!A1*2",
			ref("Model", 2, 1): "=A1+1",
		},
	)
	res := Build(context.Background(), wb, 1, nil)
	assert.Equal(t, 2, res.Graph.EdgeCount())
	assert.Equal(t, 1, res.Graph.CrossSheetEdges())
}
