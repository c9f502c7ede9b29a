package engine

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// outputRoute is the route terminal units take into the output sink.
var outputRoute = runtime.Route{}

// CreateNode instantiates a unit of type t under id and registers it. An
// empty id is replaced by a fresh uuid; use NewNode to learn it.
//
// Continuous sources are started and terminal units are routed to the
// output sink before the node becomes visible. If either step fails the
// unit is disposed and nothing is registered.
func (m *Manager) CreateNode(id string, t units.Type, config map[string]any) (runtime.Unit, error) {
	_, unit, err := m.createNode(id, t, config)
	return unit, err
}

// NewNode creates a node with an allocated id and returns that id.
func (m *Manager) NewNode(t units.Type, config map[string]any) (string, error) {
	id, _, err := m.createNode("", t, config)
	return id, err
}

func (m *Manager) createNode(id string, t units.Type, config map[string]any) (string, runtime.Unit, error) {
	if id == "" {
		id = uuid.NewString()
	}
	op := m.begin("CreateNode", logging.NodeID(id), logging.UnitType(t))

	unit, err := m.instantiate(id, t, config)
	if err != nil {
		op.done(err)
		return "", nil, err
	}

	e := &entry{
		node: graph.Node{
			ID:        id,
			Type:      t,
			Config:    maps.Clone(config),
			CreatedAt: m.now(),
		},
		unit: unit,
	}
	if err := m.applyPolicy(e); err != nil {
		err = NewError("CreateNode").Node(id).Type(t).Context("policy").Cause(err).Err()
		op.done(err)
		return "", nil, err
	}

	m.nodes[id] = e
	op.done(nil)
	m.publish(events.Event{Topic: events.NodeCreated, NodeID: id, UnitType: string(t)})
	return id, unit, nil
}

func (m *Manager) instantiate(id string, t units.Type, config map[string]any) (runtime.Unit, error) {
	if m.closed {
		return nil, NewError("CreateNode").Node(id).Type(t).Cause(ErrClosed).Err()
	}
	if _, exists := m.nodes[id]; exists {
		return nil, NewError("CreateNode").Node(id).Type(t).Cause(ErrNodeExists).Err()
	}
	construct, ok := m.factories.Lookup(t)
	if !ok {
		return nil, NewError("CreateNode").Node(id).Type(t).Cause(ErrUnknownUnitType).Err()
	}

	unit, err := construct(config)
	if err != nil {
		return nil, NewError("CreateNode").Node(id).Type(t).Context("instantiate").Cause(err).Err()
	}
	return unit, nil
}

// applyPolicy routes and starts a fresh unit. On failure it undoes what it
// did and disposes the unit.
func (m *Manager) applyPolicy(e *entry) error {
	policy := units.PolicyFor(e.node.Type)

	if policy.RouteToOutput {
		if err := m.rt.Connect(e.unit, m.rt.Output(), outputRoute); err != nil {
			return errors.Join(fmt.Errorf("route to output: %w", err), m.rt.Dispose(e.unit))
		}
		e.routedToOutput = true
	}

	if policy.AutoStart {
		if s, ok := e.unit.(runtime.Starter); ok {
			if err := s.Start(); err != nil {
				return errors.Join(fmt.Errorf("start: %w", err), m.release(e))
			}
		}
	}
	return nil
}

// release detaches a unit from the output sink and disposes it.
func (m *Manager) release(e *entry) error {
	if e.routedToOutput {
		if err := m.rt.Disconnect(e.unit, m.rt.Output(), outputRoute); err != nil {
			return fmt.Errorf("unroute from output: %w", err)
		}
		e.routedToOutput = false
	}
	if err := m.rt.Dispose(e.unit); err != nil {
		return fmt.Errorf("dispose: %w", err)
	}
	return nil
}

// RemoveNode disconnects every edge touching id (outgoing first, then
// incoming), disposes the unit and forgets the node. Removing an unknown
// id is a no-op.
//
// If the runtime fails part way the node stays registered with whatever
// edges were not yet removed, so the call can be retried.
func (m *Manager) RemoveNode(id string) error {
	op := m.begin("RemoveNode", logging.NodeID(id))

	e, ok := m.nodes[id]
	if !ok {
		op.noop()
		return nil
	}

	if _, err := m.removeLinks(func(l link) bool { return l.edge.SourceNode == id }); err != nil {
		err = NewError("RemoveNode").Node(id).Type(e.node.Type).Context("outgoing").Cause(err).Err()
		op.done(err)
		return err
	}
	if _, err := m.removeLinks(func(l link) bool { return l.edge.TargetNode == id }); err != nil {
		err = NewError("RemoveNode").Node(id).Type(e.node.Type).Context("incoming").Cause(err).Err()
		op.done(err)
		return err
	}
	if err := m.release(e); err != nil {
		err = NewError("RemoveNode").Node(id).Type(e.node.Type).Cause(err).Err()
		op.done(err)
		return err
	}

	delete(m.nodes, id)
	op.done(nil)
	m.publish(events.Event{Topic: events.NodeRemoved, NodeID: id, UnitType: string(e.node.Type)})
	return nil
}

// Close removes every node. The Manager refuses new nodes afterwards.
func (m *Manager) Close() error {
	var errs []error
	for _, id := range m.NodeIDs() {
		if err := m.RemoveNode(id); err != nil {
			errs = append(errs, err)
		}
	}
	m.closed = true
	return errors.Join(errs...)
}
