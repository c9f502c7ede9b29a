// Package ports describes the typed, directional attachment points of each
// processing-unit type and the registry that maps a unit type to its
// port layout.
package ports

import "fmt"

// SignalType is the category of data a port carries.
type SignalType string

const (
	Audio   SignalType = "audio"
	Control SignalType = "control"
	MIDI    SignalType = "midi"
	Trigger SignalType = "trigger"
)

// Valid reports whether s is one of the four signal types.
func (s SignalType) Valid() bool {
	switch s {
	case Audio, Control, MIDI, Trigger:
		return true
	}
	return false
}

// Direction is fixed when a port is created.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Short returns the handle form of the direction ("in" or "out").
func (d Direction) Short() string {
	if d == Output {
		return "out"
	}
	return "in"
}

// ChannelCount is 1 (mono) or 2 (stereo).
type ChannelCount int

const (
	Mono   ChannelCount = 1
	Stereo ChannelCount = 2
)

// Normalize maps the unset zero value to Mono.
func (c ChannelCount) Normalize() ChannelCount {
	if c <= 0 {
		return Mono
	}
	return c
}

func (c ChannelCount) String() string {
	switch c.Normalize() {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	}
	return fmt.Sprintf("%dch", int(c))
}

// Side is the edge of the node a port is drawn on.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

// Placement is a visual hint only; nothing in the engine reads it.
type Placement struct {
	Side   Side
	Offset float64
}

// Port is one attachment point of a node.
type Port struct {
	ID        string
	Direction Direction
	Signal    SignalType
	Channels  ChannelCount
	// Index is the port's position within its direction list. The runtime
	// uses it as the output/input number when routing.
	Index int
	Label string
	// BoundProperty names the live unit control this port drives, if any.
	BoundProperty string
	Placement     Placement
}

// ChannelCount returns the normalised channel count.
func (p Port) ChannelCount() ChannelCount {
	return p.Channels.Normalize()
}

func (p Port) String() string {
	return fmt.Sprintf("%s(%s %s %s)", p.ID, p.Direction, p.Signal, p.ChannelCount())
}

// Schema is the ordered port layout of a unit type.
type Schema struct {
	Inputs  []Port
	Outputs []Port
}

// Input finds an input port by id.
func (s Schema) Input(id string) (Port, bool) {
	return find(s.Inputs, id)
}

// Output finds an output port by id.
func (s Schema) Output(id string) (Port, bool) {
	return find(s.Outputs, id)
}

// Port finds a port by id in either direction, inputs first.
func (s Schema) Port(id string) (Port, bool) {
	if p, ok := s.Input(id); ok {
		return p, true
	}
	return s.Output(id)
}

// At returns the port at index in the given direction list.
func (s Schema) At(dir Direction, index int) (Port, bool) {
	list := s.Inputs
	if dir == Output {
		list = s.Outputs
	}
	if index < 0 || index >= len(list) {
		return Port{}, false
	}
	return list[index], true
}

// DefaultInput is the port used when a connect request names no target port.
func (s Schema) DefaultInput() (Port, bool) {
	if len(s.Inputs) == 0 {
		return Port{}, false
	}
	return s.Inputs[0], true
}

// DefaultOutput is the port used when a connect request names no source port.
func (s Schema) DefaultOutput() (Port, bool) {
	if len(s.Outputs) == 0 {
		return Port{}, false
	}
	return s.Outputs[0], true
}

// Clone returns a deep copy so callers cannot mutate registered schemas.
func (s Schema) Clone() Schema {
	return Schema{
		Inputs:  append([]Port(nil), s.Inputs...),
		Outputs: append([]Port(nil), s.Outputs...),
	}
}

func find(list []Port, id string) (Port, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// index assigns Index and Direction from list position.
func index(list []Port, dir Direction) []Port {
	for i := range list {
		list[i].Index = i
		list[i].Direction = dir
	}
	return list
}
