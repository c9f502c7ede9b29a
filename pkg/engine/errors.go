package engine

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-patchbay/pkg/units"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// Sentinel errors
var (
	ErrUnknownUnitType = errors.New("unknown unit type")
	ErrUnknownNode     = errors.New("unknown node")
	ErrNodeExists      = errors.New("node already exists")
	ErrClosed          = errors.New("engine is closed")
)

// Error provides structured information about a failed engine operation.
type Error struct {
	Op      string     // operation that failed, e.g. "CreateNode"
	NodeID  string     // node involved, if any
	Type    units.Type // unit type involved, if any
	Context string     // additional context
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Op
	if e.NodeID != "" {
		msg += " node " + e.NodeID
	}
	if e.Type != "" {
		msg += " (" + string(e.Type) + ")"
	}
	if e.Context != "" {
		msg += " " + e.Context
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new error builder for op.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op}}
}

// Node sets the node id.
func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.NodeID = id
	return b
}

// Type sets the unit type.
func (b *ErrorBuilder) Type(t units.Type) *ErrorBuilder {
	b.err.Type = t
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// InvalidConnectionError reports a rejected connection. The validator's
// result is kept as data so callers can show the reason or branch on the code.
type InvalidConnectionError struct {
	Result validation.Result
}

func (e *InvalidConnectionError) Error() string {
	return "invalid connection " + e.Result.Request.String() + ": " + e.Result.Reason
}

// Is matches validation.ErrInvalidConnection.
func (e *InvalidConnectionError) Is(target error) bool {
	return target == validation.ErrInvalidConnection
}

// Rejection extracts the validator result from err, if err is (or wraps)
// an InvalidConnectionError.
func Rejection(err error) (validation.Result, bool) {
	var ice *InvalidConnectionError
	if errors.As(err, &ice) {
		return ice.Result, true
	}
	return validation.Result{}, false
}

// IsUnknownNode reports whether err means a node id was not found.
func IsUnknownNode(err error) bool {
	return errors.Is(err, ErrUnknownNode)
}
