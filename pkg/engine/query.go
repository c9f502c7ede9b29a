package engine

import (
	"fmt"
	"maps"
	"sort"

	"github.com/dd0wney/cluso-patchbay/pkg/algorithms"
	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/params"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// GetNode returns the live unit registered under id.
func (m *Manager) GetNode(id string) (runtime.Unit, bool) {
	e, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	return e.unit, true
}

// Node returns the node record registered under id.
func (m *Manager) Node(id string) (graph.Node, bool) {
	e, ok := m.nodes[id]
	if !ok {
		return graph.Node{}, false
	}
	n := e.node
	n.Config = maps.Clone(n.Config)
	return n, true
}

// NodeType returns the unit type of id.
func (m *Manager) NodeType(id string) (units.Type, bool) {
	e, ok := m.nodes[id]
	if !ok {
		return "", false
	}
	return e.node.Type, true
}

// HasEdge reports whether an edge with the endpoints of k exists.
func (m *Manager) HasEdge(k graph.Key) bool {
	for _, l := range m.links {
		if l.edge.Key() == k {
			return true
		}
	}
	return false
}

// AllEdges returns a copy of the edge set in insertion order.
func (m *Manager) AllEdges() []graph.Edge {
	out := make([]graph.Edge, len(m.links))
	for i, l := range m.links {
		out[i] = l.edge
	}
	return out
}

// Edges is AllEdges.
func (m *Manager) Edges() []graph.Edge {
	return m.AllEdges()
}

// NodeIDs returns the registered ids, sorted.
func (m *Manager) NodeIDs() []string {
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) NodeCount() int {
	return len(m.nodes)
}

// Graph returns a snapshot of the nodes and edges. Later mutations do not
// show through it.
func (m *Manager) Graph() *graph.Graph {
	g := graph.New()
	for id := range m.nodes {
		g.Nodes[id], _ = m.Node(id)
	}
	g.Edges = m.AllEdges()
	return g
}

// UpdateNodeParams routes params onto the unit of id. Unknown ids are a
// silent no-op and yield an empty report.
func (m *Manager) UpdateNodeParams(id string, p map[string]any) params.Report {
	op := m.begin("UpdateNodeParams", logging.NodeID(id))
	e, ok := m.nodes[id]
	if !ok {
		op.noop()
		return params.Report{}
	}
	rep := m.router.Apply(e.unit, p)
	op.done(nil)
	return rep
}

// HandleMIDINote tunes the frequency control of id to note and restarts
// continuous sources so the note sounds. Unknown ids and units without a
// frequency control are ignored.
func (m *Manager) HandleMIDINote(id string, note params.MIDINote) error {
	if err := note.Validate(); err != nil {
		return NewError("HandleMIDINote").Node(id).Cause(err).Err()
	}
	e, ok := m.nodes[id]
	if !ok {
		return nil
	}
	freq, ok := e.unit.Control("frequency")
	if !ok {
		return nil
	}
	freq.SetValue(note.Frequency())
	m.logger.Debug("midi note",
		logging.NodeID(id),
		logging.Int("note", note.Note),
		logging.Float64("frequency", note.Frequency()),
	)

	if !units.PolicyFor(e.node.Type).AutoStart {
		return nil
	}
	if s, ok := e.unit.(runtime.Starter); ok {
		if err := s.Start(); err != nil {
			return NewError("HandleMIDINote").Node(id).Type(e.node.Type).Cause(err).Err()
		}
	}
	return nil
}

// ProcessingOrder returns every node id ordered so that each source comes
// before its targets. It fails with algorithms.ErrCycle if the graph holds
// a feedback loop, which only a non-strict validator lets through.
func (m *Manager) ProcessingOrder() ([]string, error) {
	adj := algorithms.FromGraph(m.Graph())
	if !algorithms.IsDAG(adj) {
		stats := algorithms.AnalyzeCycles(algorithms.DetectCycles(adj))
		return nil, fmt.Errorf("%w: %d feedback loops, longest spans %d nodes",
			algorithms.ErrCycle, stats.TotalCycles, stats.LongestCycle)
	}
	return algorithms.TopologicalSort(adj)
}

// Audit re-validates every edge with the Strict checks.
func (m *Manager) Audit() *validation.Audit {
	return validation.Strict.ValidateAll(m, m.schemas)
}
