package validation

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-patchbay/pkg/algorithms"
	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// Mode selects which checks a Validator runs.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModePermissive Mode = "permissive"
	ModeNoCycle    Mode = "no-cycle"
)

type check uint8

const (
	checkSelf check = 1 << iota
	checkExistence
	checkPorts
	checkDuplicate
	checkCycle

	checkAll = checkSelf | checkExistence | checkPorts | checkDuplicate | checkCycle
)

// Validator runs a fixed subset of the connection checks, always in the
// same order: self-connection, existence, port direction/signal/channels,
// duplicate, cycle. The first failure wins.
type Validator struct {
	mode   Mode
	checks check
}

// Presets. Strict runs every check; Permissive only rejects self
// connections and duplicates; NoCycle only rejects self connections and
// feedback loops.
var (
	Strict     = &Validator{mode: ModeStrict, checks: checkAll}
	Permissive = &Validator{mode: ModePermissive, checks: checkSelf | checkDuplicate}
	NoCycle    = &Validator{mode: ModeNoCycle, checks: checkSelf | checkCycle}
)

// Modes lists the selectable modes.
func Modes() []string {
	return []string{string(ModeStrict), string(ModePermissive), string(ModeNoCycle)}
}

// ForMode returns the preset for m. The empty mode is Strict.
func ForMode(m Mode) (*Validator, error) {
	switch m {
	case ModeStrict, "":
		return Strict, nil
	case ModePermissive:
		return Permissive, nil
	case ModeNoCycle:
		return NoCycle, nil
	}
	return nil, fmt.Errorf("unknown validation mode %q", m)
}

// Mode returns the validator's mode.
func (v *Validator) Mode() Mode {
	return v.mode
}

func (v *Validator) has(c check) bool {
	return v.checks&c != 0
}

// Validate checks req with the Strict preset.
func Validate(req Request, g GraphReader, schemas SchemaSource) Result {
	return Strict.Validate(req, g, schemas)
}

// Validate decides whether req may be added to g.
//
// When either port cannot be found on its node's schema the direction,
// signal and channel checks are skipped; the duplicate and cycle checks
// still run, and an accept is flagged with Result.Fallback.
func (v *Validator) Validate(req Request, g GraphReader, schemas SchemaSource) Result {
	if err := validate.Struct(req); err != nil {
		return reject(req, CodeMissingEndpoint, ReasonMissingEndpoint)
	}

	if v.has(checkSelf) && req.Source == req.Target {
		return reject(req, CodeSelfConnection, ReasonSelfConnection)
	}

	srcType, srcOK := g.NodeType(req.Source)
	dstType, dstOK := g.NodeType(req.Target)
	if v.has(checkExistence) && (!srcOK || !dstOK) {
		return reject(req, CodeNodeNotFound, ReasonNodeNotFound)
	}

	var (
		src, dst           ports.Port
		srcKnown, dstKnown bool
		srcAsked, dstAsked = req.SourcePort, req.TargetPort
	)
	if srcOK {
		req.SourcePort, src, srcKnown = resolvePort(schemas.SchemaFor(srcType), req.SourcePort, ports.Output)
	}
	if dstOK {
		req.TargetPort, dst, dstKnown = resolvePort(schemas.SchemaFor(dstType), req.TargetPort, ports.Input)
	}

	res := accept(req)
	res.Source, res.Target = src, dst

	if v.has(checkPorts) {
		if srcKnown && dstKnown {
			if code, reason := CheckPorts(src, dst); code != CodeNone {
				out := reject(req, code, reason)
				out.Source, out.Target = src, dst
				return out
			}
		} else {
			res.Fallback = true
			var missing []string
			if !srcKnown {
				missing = append(missing, unresolved(req.Source, srcType, srcOK, srcAsked, ports.Output))
			}
			if !dstKnown {
				missing = append(missing, unresolved(req.Target, dstType, dstOK, dstAsked, ports.Input))
			}
			res.FallbackReason = strings.Join(missing, "; ")
		}
	}

	if v.has(checkDuplicate) && g.HasEdge(req.Key()) {
		return reject(req, CodeDuplicate, ReasonDuplicate)
	}

	if v.has(checkCycle) && algorithms.WouldCreateCycle(algorithms.FromEdges(g.AllEdges()), req.Source, req.Target) {
		return reject(req, CodeCycle, ReasonCycle)
	}

	return res
}

// unresolved describes why a port could not be resolved.
func unresolved(node string, t units.Type, known bool, id string, dir ports.Direction) string {
	switch {
	case !known:
		return fmt.Sprintf("node %q not found", node)
	case id == "":
		return fmt.Sprintf("%s has no %s port", t, dir)
	default:
		return fmt.Sprintf("%s has no port %q", t, id)
	}
}

// resolvePort maps a requested port id to a port of schema s. An empty id
// selects the default port for dir, and a handle id ("node:out:0") is
// resolved by index. When nothing matches, the id is returned unchanged
// (or the conventional default id) with ok false.
func resolvePort(s ports.Schema, id string, dir ports.Direction) (string, ports.Port, bool) {
	if id == "" {
		p, ok := s.DefaultOutput()
		if dir == ports.Input {
			p, ok = s.DefaultInput()
		}
		if !ok {
			if dir == ports.Input {
				return ports.DefaultInputID, ports.Port{}, false
			}
			return ports.DefaultOutputID, ports.Port{}, false
		}
		return p.ID, p, true
	}

	if h, err := ports.ParseHandle(id); err == nil {
		if p, ok := h.Resolve(s); ok {
			return p.ID, p, true
		}
		return id, ports.Port{}, false
	}

	// Look in the expected direction first so a mislabelled port still
	// produces a direction error rather than a miss.
	first, second := s.Output, s.Input
	if dir == ports.Input {
		first, second = s.Input, s.Output
	}
	if p, ok := first(id); ok {
		return id, p, true
	}
	if p, ok := second(id); ok {
		return id, p, true
	}
	return id, ports.Port{}, false
}
