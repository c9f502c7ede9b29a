package graph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

func sample() *Graph {
	g := New()
	g.Nodes["osc"] = Node{ID: "osc", Type: units.Oscillator}
	g.Nodes["flt"] = Node{ID: "flt", Type: units.Filter}
	g.Nodes["out"] = Node{ID: "out", Type: units.Channel}
	g.Nodes["lone"] = Node{ID: "lone", Type: units.Meter}
	g.Edges = []Edge{
		NewEdge("osc", "output", "flt", "input"),
		NewEdge("flt", "output", "out", "input"),
		NewEdge("osc", "output", "flt", "frequency"),
	}
	return g
}

func TestNewEdge(t *testing.T) {
	a := NewEdge("a", "output", "b", "input")
	b := NewEdge("a", "output", "b", "input")

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Key(), b.Key(), "key ignores the edge id")
	assert.Equal(t, "a.output -> b.input", a.String())
}

func TestGraphLookups(t *testing.T) {
	g := sample()

	n, ok := g.Node("flt")
	require.True(t, ok)
	assert.Equal(t, units.Filter, n.Type)
	assert.True(t, g.HasNode("osc"))
	assert.False(t, g.HasNode("nope"))

	typ, ok := g.NodeType("out")
	require.True(t, ok)
	assert.Equal(t, units.Channel, typ)

	assert.True(t, g.HasEdge(Key{"osc", "output", "flt", "input"}))
	assert.False(t, g.HasEdge(Key{"osc", "output", "flt", "Q"}))

	assert.Len(t, g.EdgesFrom("osc"), 2)
	assert.Len(t, g.EdgesTo("flt"), 2)
	assert.Empty(t, g.EdgesFrom("out"))
	assert.Equal(t, []string{"flt", "lone", "osc", "out"}, g.NodeIDs())
}

func TestAdjacency(t *testing.T) {
	adj := sample().Adjacency()

	assert.ElementsMatch(t, []string{"flt", "flt"}, adj["osc"])
	assert.Equal(t, []string{"out"}, adj["flt"])
	_, ok := adj["lone"]
	assert.True(t, ok, "isolated nodes are present")
	assert.Len(t, adj, 4)
}
