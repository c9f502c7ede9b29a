// Package runtime declares the contract between the engine and the audio
// runtime that owns the live processing units. The engine instructs the
// runtime (instantiate, connect, disconnect, dispose); it never renders
// audio itself.
package runtime

import (
	"sort"

	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// Unit is a live processing-unit instance.
type Unit interface {
	Type() units.Type
	// Control returns a continuously variable parameter, e.g. frequency.
	Control(name string) (Control, bool)
	// Property returns a plain parameter, e.g. the oscillator waveform.
	Property(name string) (Property, bool)
}

// Control is a continuously variable parameter.
type Control interface {
	Value() float64
	SetValue(v float64)
}

// Property is a plain, discrete parameter.
type Property interface {
	Get() any
	Set(v any) error
	Writable() bool
}

// Starter is implemented by units that must be started to produce signal.
type Starter interface {
	Start() error
}

// Constructor instantiates one unit type from its construction config.
type Constructor func(config map[string]any) (Unit, error)

// Factories maps each supported unit type to its constructor. It is built
// once by the runtime; a missing entry means the type is unsupported.
type Factories map[units.Type]Constructor

// Lookup returns the constructor for t.
func (f Factories) Lookup(t units.Type) (Constructor, bool) {
	c, ok := f[t]
	return c, ok
}

// Types lists the supported types, sorted.
func (f Factories) Types() []units.Type {
	out := make([]units.Type, 0, len(f))
	for t := range f {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Route says which output of the source feeds which input of the target.
// A non-empty TargetParam routes into that control of the target instead
// of an input.
type Route struct {
	SourceOutput int
	TargetInput  int
	TargetParam  string
}

// Runtime is the external audio runtime.
type Runtime interface {
	Factories() Factories
	Connect(src, dst Unit, r Route) error
	Disconnect(src, dst Unit, r Route) error
	Dispose(u Unit) error
	// Output is the final output sink.
	Output() Unit
}
