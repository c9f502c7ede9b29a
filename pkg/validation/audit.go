package validation

import (
	"time"

	"github.com/dd0wney/cluso-patchbay/pkg/graph"
)

// Violation is an existing edge that would be rejected today.
type Violation struct {
	Edge   graph.Edge
	Result Result
}

// Audit is the outcome of re-checking every edge of a graph.
type Audit struct {
	Valid      bool
	Checked    int
	Fallbacks  int
	Violations []Violation
	CheckedAt  time.Time
}

// ByCode returns the violations with the given code.
func (a *Audit) ByCode(code Code) []Violation {
	out := make([]Violation, 0)
	for _, v := range a.Violations {
		if v.Result.Code == code {
			out = append(out, v)
		}
	}
	return out
}

// ValidateAll re-validates every edge of g against the rest of the graph.
// It catches edges made legal only by a fallback or a permissive mode.
func (v *Validator) ValidateAll(g GraphReader, schemas SchemaSource) *Audit {
	audit := &Audit{
		Valid:      true,
		Violations: make([]Violation, 0),
		CheckedAt:  time.Now(),
	}

	for _, e := range g.AllEdges() {
		req := Request{
			Source:     e.SourceNode,
			SourcePort: e.SourcePort,
			Target:     e.TargetNode,
			TargetPort: e.TargetPort,
		}
		res := v.Validate(req, without{GraphReader: g, edgeID: e.ID}, schemas)
		audit.Checked++
		if res.Fallback {
			audit.Fallbacks++
		}
		if !res.Valid {
			audit.Valid = false
			audit.Violations = append(audit.Violations, Violation{Edge: e, Result: res})
		}
	}
	return audit
}

// without hides one edge of a graph.
type without struct {
	GraphReader
	edgeID string
}

func (w without) AllEdges() []graph.Edge {
	all := w.GraphReader.AllEdges()
	out := make([]graph.Edge, 0, len(all))
	for _, e := range all {
		if e.ID != w.edgeID {
			out = append(out, e)
		}
	}
	return out
}

func (w without) HasEdge(k graph.Key) bool {
	for _, e := range w.AllEdges() {
		if e.Key() == k {
			return true
		}
	}
	return false
}
