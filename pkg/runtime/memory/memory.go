// Package memory is an in-process runtime that records what the engine
// asks of it (instantiation, routing, starts, disposal, parameter values)
// without rendering any audio.
package memory

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dd0wney/cluso-patchbay/pkg/params"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// OutputType is the unit type of the final output sink.
const OutputType units.Type = "Destination"

var (
	ErrDisposed     = errors.New("unit is disposed")
	ErrForeignUnit  = errors.New("unit does not belong to this runtime")
	ErrReadOnly     = errors.New("property is read-only")
	ErrPropertyKind = errors.New("property value has the wrong kind")
)

// Op names a runtime operation for failure injection.
type Op string

const (
	OpInstantiate Op = "instantiate"
	OpConnect     Op = "connect"
	OpDisconnect  Op = "disconnect"
	OpStart       Op = "start"
	OpDispose     Op = "dispose"
)

// Connection is one recorded route.
type Connection struct {
	Source *Unit
	Target *Unit
	Route  runtime.Route
}

// Runtime implements runtime.Runtime in memory.
type Runtime struct {
	mu          sync.Mutex
	factories   runtime.Factories
	output      *Unit
	nextID      int
	live        map[*Unit]bool
	connections []Connection
	failures    map[Op]error
	log         []string
}

// Option configures a Runtime.
type Option func(*Runtime)

// Only restricts the factory table to the given types.
func Only(types ...units.Type) Option {
	return func(r *Runtime) {
		keep := make(map[units.Type]bool, len(types))
		for _, t := range types {
			keep[t] = true
		}
		for t := range r.factories {
			if !keep[t] {
				delete(r.factories, t)
			}
		}
	}
}

// New creates a runtime supporting every catalogued unit type.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		live:     make(map[*Unit]bool),
		failures: make(map[Op]error),
	}
	r.factories = make(runtime.Factories, len(catalog))
	for t, s := range catalog {
		r.factories[t] = r.constructor(t, s)
	}
	r.output = r.newUnit(OutputType, defaults{controls: map[string]float64{"volume": 0}, props: map[string]any{"mute": false}})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runtime) constructor(t units.Type, s defaults) runtime.Constructor {
	return func(config map[string]any) (runtime.Unit, error) {
		if err := r.take(OpInstantiate); err != nil {
			return nil, err
		}
		u := r.newUnit(t, s)
		u.config = config
		params.NewRouter().Apply(u, config)
		r.record("instantiate %s", u)
		return u, nil
	}
}

func (r *Runtime) newUnit(t units.Type, s defaults) *Unit {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.mu.Unlock()

	u := &Unit{
		id:       id,
		typ:      t,
		runtime:  r,
		controls: make(map[string]*Control, len(s.controls)),
		props:    make(map[string]*Property, len(s.props)),
	}
	for name, v := range s.controls {
		u.controls[name] = &Control{value: v}
	}
	for name, v := range s.props {
		writable := !strings.HasPrefix(name, "!")
		u.props[strings.TrimPrefix(name, "!")] = &Property{value: v, writable: writable}
	}

	r.mu.Lock()
	r.live[u] = true
	r.mu.Unlock()
	return u
}

// Factories returns the constructor table. It is built once in New.
func (r *Runtime) Factories() runtime.Factories {
	return r.factories
}

// Output returns the final output sink.
func (r *Runtime) Output() runtime.Unit {
	return r.output
}

// Connect records a route from src to dst.
func (r *Runtime) Connect(src, dst runtime.Unit, route runtime.Route) error {
	s, d, err := r.pair(src, dst)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := r.take(OpConnect); err != nil {
		return err
	}

	r.mu.Lock()
	r.connections = append(r.connections, Connection{Source: s, Target: d, Route: route})
	r.mu.Unlock()
	r.record("connect %s -> %s", s, d)
	return nil
}

// Disconnect removes one matching route. Removing an absent route is a no-op.
func (r *Runtime) Disconnect(src, dst runtime.Unit, route runtime.Route) error {
	s, d, err := r.pair(src, dst)
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	if err := r.take(OpDisconnect); err != nil {
		return err
	}

	r.mu.Lock()
	for i, c := range r.connections {
		if c.Source == s && c.Target == d && c.Route == route {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	r.record("disconnect %s -> %s", s, d)
	return nil
}

// Dispose releases u. Every route touching u must already be gone.
func (r *Runtime) Dispose(unit runtime.Unit) error {
	u, err := r.own(unit)
	if err != nil {
		return fmt.Errorf("dispose: %w", err)
	}
	if err := r.take(OpDispose); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.connections {
		if c.Source == u || c.Target == u {
			return fmt.Errorf("dispose %s: still connected %s -> %s", u, c.Source, c.Target)
		}
	}

	u.disposed = true
	delete(r.live, u)
	r.log = append(r.log, "dispose "+u.String())
	return nil
}

// Fail makes the next call of op return err.
func (r *Runtime) Fail(op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

func (r *Runtime) take(op Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err, ok := r.failures[op]
	if !ok {
		return nil
	}
	delete(r.failures, op)
	return err
}

func (r *Runtime) own(unit runtime.Unit) (*Unit, error) {
	u, ok := unit.(*Unit)
	if !ok || u.runtime != r {
		return nil, ErrForeignUnit
	}
	if u.disposed {
		return nil, fmt.Errorf("%s: %w", u, ErrDisposed)
	}
	return u, nil
}

func (r *Runtime) pair(src, dst runtime.Unit) (*Unit, *Unit, error) {
	s, err := r.own(src)
	if err != nil {
		return nil, nil, err
	}
	d, err := r.own(dst)
	if err != nil {
		return nil, nil, err
	}
	return s, d, nil
}

func (r *Runtime) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

// Connections returns a snapshot of the recorded routes.
func (r *Runtime) Connections() []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Connection(nil), r.connections...)
}

// ConnectionsOf returns the routes touching u.
func (r *Runtime) ConnectionsOf(u runtime.Unit) []Connection {
	var out []Connection
	for _, c := range r.Connections() {
		if runtime.Unit(c.Source) == u || runtime.Unit(c.Target) == u {
			out = append(out, c)
		}
	}
	return out
}

// LiveUnits returns how many instantiated units are not yet disposed,
// excluding the output sink.
func (r *Runtime) LiveUnits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live) - 1
}

// Log returns the operations performed so far, oldest first.
func (r *Runtime) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}
