// Package engine owns the authoritative graph of a patch: which nodes
// exist, which live unit backs each one, and which port-level edges join
// them. Every mutation goes through the Manager, which keeps the graph and
// the external audio runtime in step.
//
// A Manager is not safe for concurrent use. Hosts drive it from a single
// event loop and must serialise calls themselves.
package engine

import (
	"time"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/metrics"
	"github.com/dd0wney/cluso-patchbay/pkg/params"
	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// entry is one registered node and the live unit backing it. The unit
// reference never leaves the Manager except through GetNode.
type entry struct {
	node           graph.Node
	unit           runtime.Unit
	routedToOutput bool
}

// link is an edge plus the runtime route it was realised with.
type link struct {
	edge  graph.Edge
	route runtime.Route
}

// Manager creates and destroys live units keyed by node id and tracks the
// edges between them.
type Manager struct {
	rt        runtime.Runtime
	factories runtime.Factories
	schemas   validation.SchemaSource
	validator *validation.Validator
	router    *params.Router

	logger  logging.Logger
	metrics *metrics.Registry
	bus     *events.Bus
	now     func() time.Time

	nodes  map[string]*entry
	links  []link // insertion order
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithSchemas sets the port schema source. The default is the built-in
// registry wired to the Manager's logger, metrics and event bus.
func WithSchemas(s validation.SchemaSource) Option {
	return func(m *Manager) { m.schemas = s }
}

// WithValidator selects the connection checks. The default is validation.Strict.
func WithValidator(v *validation.Validator) Option {
	return func(m *Manager) { m.validator = v }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(r *metrics.Registry) Option {
	return func(m *Manager) { m.metrics = r }
}

// WithEvents publishes lifecycle and diagnostic events on bus.
func WithEvents(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithClock overrides the clock used for node creation times.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager over rt. The factory table is read once here.
func New(rt runtime.Runtime, opts ...Option) *Manager {
	m := &Manager{
		rt:        rt,
		factories: rt.Factories(),
		validator: validation.Strict,
		logger:    logging.NopLogger{},
		now:       time.Now,
		nodes:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(logging.Component("engine"))
	if m.schemas == nil {
		m.schemas = ports.MustRegistry(
			ports.WithLogger(m.logger),
			ports.WithMetrics(m.metrics),
			ports.WithEvents(m.bus),
		)
	}
	m.router = params.NewRouter(params.WithLogger(m.logger), params.WithMetrics(m.metrics))
	m.metrics.SetGraphSize(0, 0)
	return m
}

// Schemas returns the schema source the Manager validates against.
func (m *Manager) Schemas() validation.SchemaSource {
	return m.schemas
}

// Validator returns the active validator.
func (m *Manager) Validator() *validation.Validator {
	return m.validator
}

// SupportedTypes lists the unit types the runtime can instantiate.
func (m *Manager) SupportedTypes() []units.Type {
	return m.factories.Types()
}

func (m *Manager) publish(ev events.Event) {
	m.bus.Publish(ev)
}
