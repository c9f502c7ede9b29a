package memory

import (
	"fmt"
	"reflect"

	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// Unit is a recorded unit instance.
type Unit struct {
	id       int
	typ      units.Type
	runtime  *Runtime
	config   map[string]any
	controls map[string]*Control
	props    map[string]*Property
	started  bool
	disposed bool
}

func (u *Unit) Type() units.Type { return u.typ }

func (u *Unit) String() string {
	return fmt.Sprintf("%s#%d", u.typ, u.id)
}

func (u *Unit) Control(name string) (runtime.Control, bool) {
	c, ok := u.controls[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (u *Unit) Property(name string) (runtime.Property, bool) {
	p, ok := u.props[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// Start marks the unit as producing signal.
func (u *Unit) Start() error {
	if u.disposed {
		return fmt.Errorf("start %s: %w", u, ErrDisposed)
	}
	if err := u.runtime.take(OpStart); err != nil {
		return err
	}
	u.started = true
	if p, ok := u.props["state"]; ok {
		p.value = "started"
	}
	u.runtime.record("start %s", u)
	return nil
}

// Started reports whether Start has been called.
func (u *Unit) Started() bool { return u.started }

// Disposed reports whether the runtime has released the unit.
func (u *Unit) Disposed() bool { return u.disposed }

// Config returns the construction config.
func (u *Unit) Config() map[string]any { return u.config }

// Controls returns the current control values.
func (u *Unit) Controls() map[string]float64 {
	out := make(map[string]float64, len(u.controls))
	for k, c := range u.controls {
		out[k] = c.value
	}
	return out
}

// Properties returns the current property values.
func (u *Unit) Properties() map[string]any {
	out := make(map[string]any, len(u.props))
	for k, p := range u.props {
		out[k] = p.value
	}
	return out
}

// Control is a continuously variable parameter.
type Control struct {
	value float64
}

func (c *Control) Value() float64     { return c.value }
func (c *Control) SetValue(v float64) { c.value = v }

// Property is a plain parameter. Numeric properties accept any number;
// others keep the kind they were created with.
type Property struct {
	value    any
	writable bool
}

func (p *Property) Get() any       { return p.value }
func (p *Property) Writable() bool { return p.writable }

func (p *Property) Set(v any) error {
	if !p.writable {
		return ErrReadOnly
	}
	if p.value != nil && v != nil && !sameKind(p.value, v) {
		return fmt.Errorf("%w: have %T, got %T", ErrPropertyKind, p.value, v)
	}
	p.value = v
	return nil
}

func sameKind(a, b any) bool {
	ka, kb := reflect.TypeOf(a).Kind(), reflect.TypeOf(b).Kind()
	return ka == kb || (numeric(ka) && numeric(kb))
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
