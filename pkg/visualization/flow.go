package visualization

import (
	"github.com/dd0wney/cluso-patchbay/pkg/graph"
)

// FlowLayout arranges nodes in columns along the signal flow: sources on
// the left, each node one column right of its furthest upstream node.
type FlowLayout struct {
	config LayoutConfig
}

// NewFlowLayout creates a flow layout.
func NewFlowLayout(cfg LayoutConfig) *FlowLayout {
	return &FlowLayout{config: cfg.orDefault()}
}

// Compute assigns columns by longest path from the sources. Nodes on a
// feedback loop keep the column they had when the loop was reached.
func (fl *FlowLayout) Compute(g *graph.Graph) map[string]Position {
	positions := make(map[string]Position, len(g.Nodes))
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return positions
	}

	column := make(map[string]int, len(ids))
	indegree := make(map[string]int, len(ids))
	next := make(map[string][]string, len(ids))
	for _, e := range g.Edges {
		if !g.HasNode(e.SourceNode) || !g.HasNode(e.TargetNode) || e.SourceNode == e.TargetNode {
			continue
		}
		next[e.SourceNode] = append(next[e.SourceNode], e.TargetNode)
		indegree[e.TargetNode]++
	}

	// Kahn's order; nodes on a cycle are never dequeued.
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, to := range next[id] {
			if column[id]+1 > column[to] {
				column[to] = column[id] + 1
			}
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	columns := make([][]string, 0)
	for _, id := range ids {
		c := column[id]
		for len(columns) <= c {
			columns = append(columns, nil)
		}
		columns[c] = append(columns[c], id)
	}

	cfg := fl.config
	colWidth := (cfg.Width - 2*cfg.Padding) / float64(len(columns))
	for ci, col := range columns {
		x := cfg.Padding + float64(ci)*colWidth + colWidth/2
		spacing := (cfg.Height - 2*cfg.Padding) / float64(len(col)+1)
		for ri, id := range col {
			positions[id] = Position{X: x, Y: cfg.Padding + spacing*float64(ri+1)}
		}
	}
	return positions
}
