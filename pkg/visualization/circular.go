package visualization

import (
	"math"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
)

// CircularLayout spaces nodes evenly on a circle, in id order.
type CircularLayout struct {
	config LayoutConfig
}

// NewCircularLayout creates a circular layout.
func NewCircularLayout(cfg LayoutConfig) *CircularLayout {
	return &CircularLayout{config: cfg.orDefault()}
}

func (cl *CircularLayout) Compute(g *graph.Graph) map[string]Position {
	ids := g.NodeIDs()
	positions := make(map[string]Position, len(ids))
	if len(ids) == 0 {
		return positions
	}

	cx, cy := cl.config.Width/2, cl.config.Height/2
	radius := math.Max(math.Min(cx, cy)-cl.config.Padding, 0)
	step := 2 * math.Pi / float64(len(ids))

	for i, id := range ids {
		angle := float64(i) * step
		positions[id] = Position{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		}
	}
	return positions
}
