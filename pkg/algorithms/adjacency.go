package algorithms

import (
	"sort"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
)

// Adjacency maps a node id to the targets of its outgoing edges, one entry
// per edge. Nodes without outgoing edges may be present with a nil list.
type Adjacency map[string][]string

// FromGraph builds the adjacency of a graph snapshot.
func FromGraph(g *graph.Graph) Adjacency {
	return Adjacency(g.Adjacency())
}

// FromEdges builds an adjacency from an edge list. Every endpoint becomes a key.
func FromEdges(edges []graph.Edge) Adjacency {
	adj := make(Adjacency)
	for _, e := range edges {
		adj[e.SourceNode] = append(adj[e.SourceNode], e.TargetNode)
		if _, ok := adj[e.TargetNode]; !ok {
			adj[e.TargetNode] = nil
		}
	}
	return adj
}

// With returns a copy of adj with one extra edge from -> to.
func (a Adjacency) With(from, to string) Adjacency {
	out := make(Adjacency, len(a)+2)
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	out[from] = append(out[from], to)
	if _, ok := out[to]; !ok {
		out[to] = nil
	}
	return out
}

// Nodes returns every node id, sources and targets alike, sorted.
func (a Adjacency) Nodes() []string {
	seen := make(map[string]bool, len(a))
	for k, targets := range a {
		seen[k] = true
		for _, t := range targets {
			seen[t] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
