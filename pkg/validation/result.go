// Package validation decides whether a proposed edge between two ports is
// legal. It reads the graph and port schemas it is given and never
// mutates either.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// ErrInvalidConnection matches every rejected connection via errors.Is.
var ErrInvalidConnection = errors.New("invalid connection")

var validate = validator.New()

// GraphReader is the read-only view of a graph the validator needs.
type GraphReader interface {
	NodeType(id string) (units.Type, bool)
	HasEdge(k graph.Key) bool
	AllEdges() []graph.Edge
}

// SchemaSource resolves the port layout of a unit type.
type SchemaSource interface {
	SchemaFor(t units.Type) ports.Schema
}

// Request is a proposed edge. Empty port ids select the default output of
// the source and the default input of the target.
type Request struct {
	Source     string `validate:"required"`
	SourcePort string
	Target     string `validate:"required"`
	TargetPort string
}

// Key returns the endpoint quadruple of the request.
func (r Request) Key() graph.Key {
	return graph.Key{
		SourceNode: r.Source,
		SourcePort: r.SourcePort,
		TargetNode: r.Target,
		TargetPort: r.TargetPort,
	}
}

func (r Request) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", r.Source, r.SourcePort, r.Target, r.TargetPort)
}

// Code classifies a rejection.
type Code string

const (
	CodeNone            Code = ""
	CodeMissingEndpoint Code = "missing_endpoint"
	CodeSelfConnection  Code = "self_connection"
	CodeNodeNotFound    Code = "node_not_found"
	CodeSourceDirection Code = "source_direction"
	CodeTargetDirection Code = "target_direction"
	CodeSignalMismatch  Code = "signal_mismatch"
	CodeChannelMismatch Code = "channel_mismatch"
	CodeDuplicate       Code = "duplicate"
	CodeCycle           Code = "cycle"
)

// Rejection reasons.
const (
	ReasonMissingEndpoint = "Missing source or target"
	ReasonSelfConnection  = "Cannot connect node to itself"
	ReasonNodeNotFound    = "Source or target node not found"
	ReasonSourceDirection = "Source port must be an output"
	ReasonTargetDirection = "Target port must be an input"
	ReasonDuplicate       = "Connection already exists"
	ReasonCycle           = "Would create feedback loop"
)

// Result is the outcome of validating one request. Rejections are data.
type Result struct {
	Valid  bool
	Code   Code
	Reason string
	// Fallback marks an accept where port metadata was unavailable and the
	// direction, signal and channel checks were skipped.
	Fallback bool
	// FallbackReason names the port or node that could not be resolved.
	FallbackReason string
	// Request carries the port ids after default resolution.
	Request Request
	// Source and Target are the resolved ports; zero when unknown.
	Source ports.Port
	Target ports.Port
}

// Err returns nil for a valid result and an error wrapping
// ErrInvalidConnection otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConnection, r.Reason)
}

func accept(req Request) Result {
	return Result{Valid: true, Request: req}
}

func reject(req Request, code Code, reason string) Result {
	return Result{Code: code, Reason: reason, Request: req}
}
