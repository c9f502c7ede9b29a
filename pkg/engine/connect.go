package engine

import (
	"fmt"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// ConnectNodes connects src to dst. The optional ports name the source
// output and the target input, in that order; omitted ports resolve to the
// schemas' defaults. Port ids may also be handles such as "osc:out:0".
func (m *Manager) ConnectNodes(src, dst string, ports ...string) (graph.Edge, error) {
	req := validation.Request{Source: src, Target: dst}
	switch len(ports) {
	case 0:
	case 1:
		req.SourcePort = ports[0]
	case 2:
		req.SourcePort, req.TargetPort = ports[0], ports[1]
	default:
		return graph.Edge{}, NewError("ConnectNodes").
			Context("%d port ids", len(ports)).
			Cause(fmt.Errorf("expected at most 2 port ids")).Err()
	}
	return m.Connect(req)
}

// Connect validates req against the live graph and, when it is accepted,
// routes the runtime units and records the edge. A rejection is returned
// as an *InvalidConnectionError and leaves the runtime and the edge set
// untouched.
func (m *Manager) Connect(req validation.Request) (graph.Edge, error) {
	op := m.begin("ConnectNodes", logging.String("request", req.String()))

	for _, id := range []string{req.Source, req.Target} {
		if _, ok := m.nodes[id]; id != "" && !ok {
			err := NewError("ConnectNodes").Node(id).Cause(ErrUnknownNode).Err()
			op.done(err)
			return graph.Edge{}, err
		}
	}

	res := m.validator.Validate(req, m, m.schemas)
	if !res.Valid {
		m.metrics.RecordRejection(string(res.Code))
		m.publish(events.Event{
			Topic:  events.ConnectionRejected,
			NodeID: req.Source,
			Reason: res.Reason,
		})
		err := &InvalidConnectionError{Result: res}
		op.done(err)
		return graph.Edge{}, err
	}

	l := link{
		edge: graph.NewEdge(res.Request.Source, res.Request.SourcePort, res.Request.Target, res.Request.TargetPort),
		route: runtime.Route{
			SourceOutput: res.Source.Index,
			TargetInput:  res.Target.Index,
			TargetParam:  res.Target.BoundProperty,
		},
	}
	if l.route.TargetParam != "" {
		l.route.TargetInput = 0
	}

	if err := m.rt.Connect(m.nodes[req.Source].unit, m.nodes[req.Target].unit, l.route); err != nil {
		err = NewError("ConnectNodes").Node(req.Source).Context("to %s", req.Target).Cause(err).Err()
		op.done(err)
		return graph.Edge{}, err
	}

	m.links = append(m.links, l)
	op.done(nil)
	m.publish(events.Event{Topic: events.EdgeAdded, EdgeID: l.edge.ID, NodeID: l.edge.SourceNode})

	if res.Fallback {
		m.metrics.RecordFallbackAcceptance()
		m.logger.Warn("connection accepted without port metadata",
			logging.EdgeID(l.edge.ID),
			logging.String("edge", l.edge.String()),
			logging.String("reason", res.FallbackReason),
		)
		m.publish(events.Event{
			Topic:  events.ConnectionFallback,
			EdgeID: l.edge.ID,
			NodeID: l.edge.SourceNode,
			Reason: res.FallbackReason,
		})
	}
	return l.edge, nil
}

// DisconnectNodes removes every edge from src to dst. It is a no-op when
// there are none.
func (m *Manager) DisconnectNodes(src, dst string) error {
	op := m.begin("DisconnectNodes", logging.String("source", src), logging.String("target", dst))
	n, err := m.removeLinks(func(l link) bool {
		return l.edge.SourceNode == src && l.edge.TargetNode == dst
	})
	return m.finishRemoval(op, n, err, NewError("DisconnectNodes").Node(src).Context("to %s", dst))
}

// DisconnectEdge removes one edge by id. Unknown ids are a no-op.
func (m *Manager) DisconnectEdge(edgeID string) error {
	op := m.begin("DisconnectEdge", logging.EdgeID(edgeID))
	n, err := m.removeLinks(func(l link) bool { return l.edge.ID == edgeID })
	return m.finishRemoval(op, n, err, NewError("DisconnectEdge").Context("edge %s", edgeID))
}

func (m *Manager) finishRemoval(op *opTimer, removed int, err error, b *ErrorBuilder) error {
	if err != nil {
		err = b.Cause(err).Err()
		op.done(err)
		return err
	}
	if removed == 0 {
		op.noop()
		return nil
	}
	op.done(nil)
	return nil
}

// removeLinks disconnects and forgets every link matching match, in
// insertion order. On a runtime failure the failing link and everything
// after it are kept.
func (m *Manager) removeLinks(match func(link) bool) (int, error) {
	kept := make([]link, 0, len(m.links))
	removed := 0
	for i, l := range m.links {
		if !match(l) {
			kept = append(kept, l)
			continue
		}
		src, dst := m.nodes[l.edge.SourceNode].unit, m.nodes[l.edge.TargetNode].unit
		if err := m.rt.Disconnect(src, dst, l.route); err != nil {
			m.links = append(kept, m.links[i:]...)
			return removed, fmt.Errorf("disconnect %s: %w", l.edge, err)
		}
		removed++
		m.publish(events.Event{Topic: events.EdgeRemoved, EdgeID: l.edge.ID, NodeID: l.edge.SourceNode})
	}
	m.links = kept
	return removed, nil
}

// ValidateConnection checks req against the live graph without changing
// anything.
func (m *Manager) ValidateConnection(req validation.Request) validation.Result {
	return m.validator.Validate(req, m, m.schemas)
}
