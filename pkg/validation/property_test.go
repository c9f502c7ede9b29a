package validation

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

var signals = []any{ports.Audio, ports.Control, ports.MIDI, ports.Trigger}

// TestPortCompatibilityProperties checks the signal matrix and channel rule
// over every combination.
func TestPortCompatibilityProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("audio channels accepted iff source <= target", prop.ForAll(
		func(cs, ct int) bool {
			src := ports.Port{Direction: ports.Output, Signal: ports.Audio, Channels: ports.ChannelCount(cs)}
			dst := ports.Port{Direction: ports.Input, Signal: ports.Audio, Channels: ports.ChannelCount(ct)}
			code, _ := CheckPorts(src, dst)
			return (code == CodeNone) == (cs <= ct)
		},
		gen.IntRange(1, 2),
		gen.IntRange(1, 2),
	))

	properties.Property("signals compatible iff equal or audio into control", prop.ForAll(
		func(a, b any) bool {
			s, d := a.(ports.SignalType), b.(ports.SignalType)
			src := ports.Port{Direction: ports.Output, Signal: s}
			dst := ports.Port{Direction: ports.Input, Signal: d}
			code, _ := CheckPorts(src, dst)
			want := s == d || (s == ports.Audio && d == ports.Control)
			return (code == CodeNone) == want
		},
		gen.OneConstOf(signals...),
		gen.OneConstOf(signals...),
	))

	properties.TestingRun(t)
}

// TestDirectionInvariant checks that every non-fallback accept joins an
// output to an input, whatever port ids are asked for.
func TestDirectionInvariant(t *testing.T) {
	all := units.All()
	portIDs := []any{"", "input", "output", "frequency", "Q", "pan", "input-1", "output-0", "low", "n:in:0", "n:out:0", "n:in:2"}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("accepted edges run output to input", prop.ForAll(
		func(si, ti int, sp, tp any) bool {
			g := graph.New()
			g.Nodes["s"] = graph.Node{ID: "s", Type: all[si]}
			g.Nodes["t"] = graph.Node{ID: "t", Type: all[ti]}

			res := Validate(Request{Source: "s", SourcePort: sp.(string), Target: "t", TargetPort: tp.(string)}, g, schemas)
			if !res.Valid || res.Fallback {
				return true
			}
			return res.Source.Direction == ports.Output && res.Target.Direction == ports.Input
		},
		gen.IntRange(0, len(all)-1),
		gen.IntRange(0, len(all)-1),
		gen.OneConstOf(portIDs...),
		gen.OneConstOf(portIDs...),
	))

	properties.TestingRun(t)
}

// TestCycleRejectionProperty builds a random DAG over a chain of delays and
// checks that every back edge is rejected as a feedback loop.
func TestCycleRejectionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("closing a path is always a feedback loop", prop.ForAll(
		func(n int, extra []int, i, j int) bool {
			g := graph.New()
			ids := make([]string, n)
			for k := range ids {
				ids[k] = fmt.Sprintf("d%d", k)
				g.Nodes[ids[k]] = graph.Node{ID: ids[k], Type: units.Delay}
			}
			for k := 0; k+1 < n; k++ {
				g.Edges = append(g.Edges, graph.NewEdge(ids[k], "output", ids[k+1], "input"))
			}
			// forward-only shortcuts keep the graph acyclic
			for x := 0; x+1 < len(extra); x += 2 {
				a, b := extra[x]%n, extra[x+1]%n
				if a < b {
					g.Edges = append(g.Edges, graph.NewEdge(ids[a], "output", ids[b], "input"))
				}
			}

			lo, hi := i%n, j%n
			if lo == hi {
				return true
			}
			if lo > hi {
				lo, hi = hi, lo
			}

			back := Validate(Request{Source: ids[hi], Target: ids[lo]}, g, schemas)
			fwd := Validate(Request{Source: ids[lo], Target: ids[hi]}, g, schemas)
			return back.Code == CodeCycle && fwd.Code != CodeCycle
		},
		gen.IntRange(2, 30),
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
