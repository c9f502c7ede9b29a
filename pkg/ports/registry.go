package ports

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/metrics"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// ErrSchemaExists is returned when registering a type that already has a schema.
var ErrSchemaExists = errors.New("schema already registered")

//go:embed schemas.yaml
var builtinSchemas []byte

// Registry maps unit types to port schemas. Registered schemas are never
// replaced and are handed out as clones.
type Registry struct {
	mu      sync.RWMutex
	schemas map[units.Type]Schema

	logger  logging.Logger
	metrics *metrics.Registry
	bus     *events.Bus
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics counts fallbacks in m.
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithEvents publishes a schema.fallback event on bus for every fallback.
func WithEvents(bus *events.Bus) Option {
	return func(r *Registry) { r.bus = bus }
}

// NewRegistry returns a registry preloaded with the built-in schemas.
func NewRegistry(opts ...Option) (*Registry, error) {
	builtin, err := decodeBytes(builtinSchemas)
	if err != nil {
		return nil, fmt.Errorf("built-in schemas: %w", err)
	}
	r := NewEmptyRegistry(opts...)
	r.schemas = builtin
	return r, nil
}

// MustRegistry is NewRegistry for callers that treat a broken built-in
// table as a programming error.
func MustRegistry(opts ...Option) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewEmptyRegistry returns a registry with no schemas; every lookup falls back.
func NewEmptyRegistry(opts ...Option) *Registry {
	r := &Registry{
		schemas: make(map[units.Type]Schema),
		logger:  logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SchemaFor returns the schema of t. It never fails: types without a
// schema get SinglePort(Audio), and the fallback is logged, counted and
// published.
func (r *Registry) SchemaFor(t units.Type) Schema {
	if s, ok := r.Lookup(t); ok {
		return s
	}

	r.logger.Warn("no port schema for unit type, using single audio port",
		logging.UnitType(t),
		logging.Component("ports"))
	r.metrics.RecordSchemaFallback(string(t))
	r.bus.Publish(events.Event{
		Topic:    events.SchemaFallback,
		UnitType: string(t),
		Reason:   "no port schema registered",
	})

	return SinglePort(Audio)
}

// Lookup returns the registered schema of t without falling back.
func (r *Registry) Lookup(t units.Type) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[t]
	if !ok {
		return Schema{}, false
	}
	return s.Clone(), true
}

// Has reports whether t has a registered schema.
func (r *Registry) Has(t units.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[t]
	return ok
}

// Register adds a schema for t. Schemas are immutable once registered.
func (r *Registry) Register(t units.Type, s Schema) error {
	if !t.Valid() {
		return fmt.Errorf("register %q: %w", t, units.ErrUnknownType)
	}

	s = s.Clone()
	index(s.Inputs, Input)
	index(s.Outputs, Output)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[t]; ok {
		return fmt.Errorf("register %s: %w", t, ErrSchemaExists)
	}
	r.schemas[t] = s
	return nil
}

// LoadFile registers every schema in a YAML schema file. Nothing is
// registered if any entry is invalid or already known.
func (r *Registry) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()

	loaded, err := Decode(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for t := range loaded {
		if _, ok := r.schemas[t]; ok {
			return 0, fmt.Errorf("%s: %s: %w", path, t, ErrSchemaExists)
		}
	}
	for t, s := range loaded {
		r.schemas[t] = s
	}

	r.logger.Info("loaded port schemas",
		logging.Path(path),
		logging.Count(len(loaded)))
	return len(loaded), nil
}

// DefinedTypes lists the types with a registered schema, sorted.
func (r *Registry) DefinedTypes() []units.Type {
	r.mu.RLock()
	out := make([]units.Type, 0, len(r.schemas))
	for t := range r.schemas {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Coverage summarises which known unit types have schemas.
type Coverage struct {
	Defined int
	Missing []units.Type
}

// Coverage compares the registry with units.All.
func (r *Registry) Coverage() Coverage {
	var c Coverage
	for _, t := range units.All() {
		if r.Has(t) {
			c.Defined++
		} else {
			c.Missing = append(c.Missing, t)
		}
	}
	return c
}
