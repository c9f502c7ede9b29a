package ports

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidHandle is returned by ParseHandle for malformed handle ids.
var ErrInvalidHandle = errors.New("invalid handle id")

// Handle addresses a port by node, direction and index, written as
// "node:in|out:index" (for example "osc-1:out:0").
type Handle struct {
	NodeID    string
	Direction Direction
	Index     int
}

func (h Handle) String() string {
	return FormatHandle(h.NodeID, h.Direction, h.Index)
}

// FormatHandle builds a handle id.
func FormatHandle(nodeID string, dir Direction, index int) string {
	return nodeID + ":" + dir.Short() + ":" + strconv.Itoa(index)
}

// ParseHandle splits a handle id into its parts.
func ParseHandle(s string) (Handle, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}

	var dir Direction
	switch parts[1] {
	case "in":
		dir = Input
	case "out":
		dir = Output
	default:
		return Handle{}, fmt.Errorf("%w: direction %q", ErrInvalidHandle, parts[1])
	}

	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return Handle{}, fmt.Errorf("%w: index %q", ErrInvalidHandle, parts[2])
	}

	return Handle{NodeID: parts[0], Direction: dir, Index: idx}, nil
}

// Resolve returns the port a handle addresses on schema s.
func (h Handle) Resolve(s Schema) (Port, bool) {
	return s.At(h.Direction, h.Index)
}
