package ports

import "fmt"

// Default port ids used by the templates below.
const (
	DefaultInputID  = "input"
	DefaultOutputID = "output"
)

// SinglePort is one input and one output of the same signal type. Unit
// types without a registered schema fall back to SinglePort(Audio).
func SinglePort(sig SignalType) Schema {
	return Schema{
		Inputs:  index([]Port{{ID: DefaultInputID, Signal: sig, Placement: Placement{Side: Top}}}, Input),
		Outputs: index([]Port{{ID: DefaultOutputID, Signal: sig, Placement: Placement{Side: Bottom}}}, Output),
	}
}

// SourcePort has no inputs and a single output.
func SourcePort(sig SignalType) Schema {
	return Schema{
		Inputs:  []Port{},
		Outputs: index([]Port{{ID: DefaultOutputID, Signal: sig, Placement: Placement{Side: Bottom}}}, Output),
	}
}

// DestinationPort has a single input and no outputs.
func DestinationPort(sig SignalType) Schema {
	return Schema{
		Inputs:  index([]Port{{ID: DefaultInputID, Signal: sig, Placement: Placement{Side: Top}}}, Input),
		Outputs: []Port{},
	}
}

// MergePorts is n mono audio inputs ("input-0".."input-{n-1}") feeding one
// stereo output.
func MergePorts(n int) Schema {
	if n < 1 {
		n = 2
	}
	return Schema{
		Inputs: index(spread(n, "input", Top), Input),
		Outputs: index([]Port{{
			ID:        DefaultOutputID,
			Label:     "Stereo",
			Signal:    Audio,
			Channels:  Stereo,
			Placement: Placement{Side: Bottom},
		}}, Output),
	}
}

// SplitPorts mirrors MergePorts: one stereo input, n mono outputs.
func SplitPorts(n int) Schema {
	if n < 1 {
		n = 2
	}
	return Schema{
		Inputs: index([]Port{{
			ID:        DefaultInputID,
			Label:     "Stereo",
			Signal:    Audio,
			Channels:  Stereo,
			Placement: Placement{Side: Top},
		}}, Input),
		Outputs: index(spread(n, "output", Bottom), Output),
	}
}

// spread lays n mono audio ports evenly across 40 units of the given side.
func spread(n int, prefix string, side Side) []Port {
	spacing := 0.0
	if n > 1 {
		spacing = 40 / float64(n-1)
	}
	out := make([]Port, n)
	for i := range out {
		out[i] = Port{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Label:    fmt.Sprintf("Ch %d", i+1),
			Signal:   Audio,
			Channels: Mono,
			Placement: Placement{
				Side:   side,
				Offset: (float64(i) - float64(n-1)/2) * spacing,
			},
		}
	}
	return out
}
