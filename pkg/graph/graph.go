// Package graph holds the plain data model of a patch: nodes, port-level
// edges and read-only snapshots of the two.
package graph

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// Node is a placed processing unit. The live unit itself is owned by the
// engine and is not part of this value.
type Node struct {
	ID        string
	Type      units.Type
	Config    map[string]any
	CreatedAt time.Time
}

// Edge connects an output port of one node to an input port of another.
type Edge struct {
	ID         string
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

// Key identifies an edge by its endpoints; at most one edge exists per key.
type Key struct {
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

// NewEdge creates an edge with a fresh id.
func NewEdge(sourceNode, sourcePort, targetNode, targetPort string) Edge {
	return Edge{
		ID:         uuid.NewString(),
		SourceNode: sourceNode,
		SourcePort: sourcePort,
		TargetNode: targetNode,
		TargetPort: targetPort,
	}
}

// Key returns the endpoint quadruple of e.
func (e Edge) Key() Key {
	return Key{
		SourceNode: e.SourceNode,
		SourcePort: e.SourcePort,
		TargetNode: e.TargetNode,
		TargetPort: e.TargetPort,
	}
}

func (e Edge) String() string {
	return e.SourceNode + "." + e.SourcePort + " -> " + e.TargetNode + "." + e.TargetPort
}

// Graph is a snapshot of the node and edge sets.
type Graph struct {
	Nodes map[string]Node
	Edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]Node)}
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// NodeType returns the unit type of node id.
func (g *Graph) NodeType(id string) (units.Type, bool) {
	n, ok := g.Nodes[id]
	return n.Type, ok
}

// HasEdge reports whether an edge with key k exists.
func (g *Graph) HasEdge(k Key) bool {
	for _, e := range g.Edges {
		if e.Key() == k {
			return true
		}
	}
	return false
}

// AllEdges returns the edge list.
func (g *Graph) AllEdges() []Edge {
	return g.Edges
}

// EdgesFrom returns the edges whose source is id.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.SourceNode == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges whose target is id.
func (g *Graph) EdgesTo(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.TargetNode == id {
			out = append(out, e)
		}
	}
	return out
}

// NodeIDs returns the node ids in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Adjacency returns node id -> target node ids, one entry per edge. Every
// node appears as a key, including isolated ones.
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for id := range g.Nodes {
		adj[id] = nil
	}
	for _, e := range g.Edges {
		adj[e.SourceNode] = append(adj[e.SourceNode], e.TargetNode)
	}
	return adj
}
