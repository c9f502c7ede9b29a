package algorithms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
)

func chain(ids ...string) Adjacency {
	adj := make(Adjacency)
	for i := 0; i+1 < len(ids); i++ {
		adj[ids[i]] = append(adj[ids[i]], ids[i+1])
	}
	if len(ids) > 0 {
		if _, ok := adj[ids[len(ids)-1]]; !ok {
			adj[ids[len(ids)-1]] = nil
		}
	}
	return adj
}

// TestDetectCycles_NoCycles tests a linear path
func TestDetectCycles_NoCycles(t *testing.T) {
	cycles := DetectCycles(chain("a", "b", "c"))
	assert.Empty(t, cycles)
}

func TestDetectCycles_SimpleCycle(t *testing.T) {
	cycles := DetectCycles(chain("a", "b", "a"))
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, Cycle{"a", "b"}, cycles[0])
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	cycles := DetectCycles(Adjacency{"a": {"a"}})
	require.Len(t, cycles, 1)
	assert.Equal(t, Cycle{"a"}, cycles[0])
}

func TestDetectCycles_TriangleCycle(t *testing.T) {
	cycles := DetectCycles(chain("a", "b", "c", "a"))
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 3)
}

func TestDetectCycles_MultipleCycles(t *testing.T) {
	// a <-> b and c <-> d, disconnected
	adj := Adjacency{
		"a": {"b"}, "b": {"a"},
		"c": {"d"}, "d": {"c"},
	}
	assert.Len(t, DetectCycles(adj), 2)
}

func TestDetectCycles_EmptyGraph(t *testing.T) {
	assert.Empty(t, DetectCycles(Adjacency{}))
}

func TestDetectCycles_Diamond(t *testing.T) {
	adj := Adjacency{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}}
	assert.Empty(t, DetectCycles(adj), "reconvergent paths are not cycles")
}

func TestHasCycle(t *testing.T) {
	assert.False(t, HasCycle(Adjacency{}))
	assert.False(t, HasCycle(chain("a", "b", "c")))
	assert.True(t, HasCycle(chain("a", "b", "c", "a")))
	assert.True(t, HasCycle(Adjacency{"x": {"x"}}))
	// cycle only reachable from a node that sorts last
	assert.True(t, HasCycle(Adjacency{"a": nil, "z": {"y"}, "y": {"z"}}))
}

func TestHasCycleFrom(t *testing.T) {
	adj := Adjacency{"a": {"b"}, "c": {"d"}, "d": {"c"}}
	assert.False(t, HasCycleFrom(adj, "a"), "cycle is not reachable from a")
	assert.True(t, HasCycleFrom(adj, "c"))
	assert.False(t, HasCycleFrom(adj, "missing"))
}

func TestWouldCreateCycle(t *testing.T) {
	adj := chain("osc", "filter", "channel")

	assert.True(t, WouldCreateCycle(adj, "channel", "osc"))
	assert.True(t, WouldCreateCycle(adj, "filter", "osc"))
	assert.True(t, WouldCreateCycle(adj, "osc", "osc"))
	assert.False(t, WouldCreateCycle(adj, "osc", "channel"))
	assert.False(t, WouldCreateCycle(adj, "lfo", "filter"))

	assert.Len(t, adj["channel"], 0, "the input adjacency is not modified")
}

func TestWouldCreateCycle_DeepChain(t *testing.T) {
	const n = 100000
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	adj := chain(ids...)

	assert.True(t, WouldCreateCycle(adj, ids[n-1], ids[0]))
	assert.False(t, WouldCreateCycle(adj, ids[0], ids[n-1]))
}

func TestFromEdges(t *testing.T) {
	edges := []graph.Edge{
		graph.NewEdge("a", "output", "b", "input"),
		graph.NewEdge("a", "output", "b", "frequency"),
	}
	adj := FromEdges(edges)
	assert.Equal(t, []string{"b", "b"}, adj["a"])
	assert.Contains(t, adj, "b")
	assert.Equal(t, []string{"a", "b"}, adj.Nodes())
}

func TestAnalyzeCycles(t *testing.T) {
	stats := AnalyzeCycles([]Cycle{{"a"}, {"a", "b"}, {"a", "b", "c"}})
	assert.Equal(t, 3, stats.TotalCycles)
	assert.Equal(t, 1, stats.ShortestCycle)
	assert.Equal(t, 3, stats.LongestCycle)
	assert.Equal(t, 1, stats.SelfLoops)
	assert.InDelta(t, 2.0, stats.AverageLength, 1e-9)
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Equal(t, CycleStats{}, AnalyzeCycles(nil))
}

func BenchmarkWouldCreateCycle(b *testing.B) {
	ids := make([]string, 1000)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	adj := chain(ids...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		WouldCreateCycle(adj, ids[len(ids)-1], ids[0])
	}
}
