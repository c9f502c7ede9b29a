package visualization

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

func patch(edges ...[2]string) *graph.Graph {
	g := graph.New()
	for _, e := range edges {
		for _, id := range e {
			g.Nodes[id] = graph.Node{ID: id, Type: units.Gain}
		}
		g.Edges = append(g.Edges, graph.NewEdge(e[0], "output", e[1], "input"))
	}
	return g
}

func TestFlowLayoutColumns(t *testing.T) {
	// osc -> flt -> ch, lfo -> flt, osc -> ch
	g := patch(
		[2]string{"osc", "flt"},
		[2]string{"flt", "ch"},
		[2]string{"lfo", "flt"},
		[2]string{"osc", "ch"},
	)
	pos := NewFlowLayout(DefaultConfig()).Compute(g)
	require.Len(t, pos, 4)

	assert.Equal(t, pos["osc"].X, pos["lfo"].X)
	assert.Less(t, pos["osc"].X, pos["flt"].X)
	assert.Less(t, pos["flt"].X, pos["ch"].X, "longest path wins over the direct edge")
	assert.Less(t, pos["lfo"].Y, pos["osc"].Y, "rows follow id order")

	assert.InDelta(t, 400.0, pos["flt"].X, 0.001)
	assert.InDelta(t, 300.0, pos["flt"].Y, 0.001)
}

func TestFlowLayoutToleratesCycles(t *testing.T) {
	g := patch([2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"src", "a"})
	pos := NewFlowLayout(DefaultConfig()).Compute(g)
	assert.Len(t, pos, 3)
	for id, p := range pos {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), id)
	}
}

func TestCircularLayout(t *testing.T) {
	g := patch([2]string{"a", "b"}, [2]string{"c", "d"})
	cfg := LayoutConfig{Width: 400, Height: 400, Padding: 50}
	pos := NewCircularLayout(cfg).Compute(g)
	require.Len(t, pos, 4)

	for id, p := range pos {
		r := math.Hypot(p.X-200, p.Y-200)
		assert.InDelta(t, 150.0, r, 0.001, id)
	}
	assert.InDelta(t, 350.0, pos["a"].X, 0.001)
}

func TestEmptyAndSingle(t *testing.T) {
	for _, l := range []Layout{NewFlowLayout(LayoutConfig{}), NewCircularLayout(LayoutConfig{})} {
		assert.Empty(t, l.Compute(graph.New()))

		g := graph.New()
		g.Nodes["solo"] = graph.Node{ID: "solo", Type: units.Oscillator}
		pos := l.Compute(g)
		require.Contains(t, pos, "solo")
		assert.GreaterOrEqual(t, pos["solo"].X, 50.0)
		assert.LessOrEqual(t, pos["solo"].X, 750.0)
	}
}

func TestByName(t *testing.T) {
	l, err := ByName("", LayoutConfig{})
	require.NoError(t, err)
	assert.IsType(t, &FlowLayout{}, l)

	l, err = ByName("circular", LayoutConfig{})
	require.NoError(t, err)
	assert.IsType(t, &CircularLayout{}, l)

	_, err = ByName("spiral", LayoutConfig{})
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestExportJSON(t *testing.T) {
	g := patch([2]string{"osc", "out"})
	g.Nodes["osc"] = graph.Node{ID: "osc", Type: units.Oscillator, Config: map[string]any{"frequency": 220.0}}

	b, err := New(g, NewFlowLayout(DefaultConfig())).ExportJSON()
	require.NoError(t, err)

	var data struct {
		Nodes []struct {
			ID     string         `json:"id"`
			Type   string         `json:"type"`
			Config map[string]any `json:"config"`
			X      float64        `json:"x"`
		} `json:"nodes"`
		Edges []struct {
			Source       string `json:"source"`
			SourceHandle string `json:"sourceHandle"`
			Target       string `json:"target"`
			TargetHandle string `json:"targetHandle"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(b, &data))

	require.Len(t, data.Nodes, 2)
	assert.Equal(t, "osc", data.Nodes[0].ID)
	assert.Equal(t, "Oscillator", data.Nodes[0].Type)
	assert.Equal(t, 220.0, data.Nodes[0].Config["frequency"])
	assert.Less(t, data.Nodes[0].X, data.Nodes[1].X)

	require.Len(t, data.Edges, 1)
	assert.Equal(t, "osc", data.Edges[0].Source)
	assert.Equal(t, "output", data.Edges[0].SourceHandle)
	assert.Equal(t, "input", data.Edges[0].TargetHandle)
}
