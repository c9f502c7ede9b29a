package health

import (
	"fmt"
	"sync/atomic"

	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// Static returns a check that always reports healthy.
func Static(message string) CheckFunc {
	return func() Check {
		return Check{Status: StatusHealthy, Message: message}
	}
}

// AuditCheck re-validates the graph. Edges that would now be rejected,
// typically ones accepted on fallback, leave the graph degraded.
func AuditCheck(audit func() *validation.Audit) CheckFunc {
	return func() Check {
		a := audit()
		c := Check{
			Status: StatusHealthy,
			Details: map[string]any{
				"checked":   a.Checked,
				"fallbacks": a.Fallbacks,
			},
		}
		if a.Valid {
			c.Message = fmt.Sprintf("%d edges valid", a.Checked)
			return c
		}

		reasons := make([]string, 0, len(a.Violations))
		for _, v := range a.Violations {
			reasons = append(reasons, v.Edge.String()+": "+v.Result.Reason)
		}
		c.Status = StatusDegraded
		c.Message = fmt.Sprintf("%d of %d edges violate current rules", len(a.Violations), a.Checked)
		c.Details["violations"] = reasons
		c.Details["cycles"] = len(a.ByCode(validation.CodeCycle))
		return c
	}
}

// UnitsCheck compares graph nodes with live runtime units. A mismatch means
// a unit leaked or vanished behind the engine's back.
func UnitsCheck(nodes, live func() int) CheckFunc {
	return func() Check {
		n, l := nodes(), live()
		c := Check{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d nodes", n),
			Details: map[string]any{"nodes": n, "live_units": l},
		}
		if n != l {
			c.Status = StatusUnhealthy
			c.Message = fmt.Sprintf("graph has %d nodes but runtime holds %d units", n, l)
		}
		return c
	}
}

// EventsCheck degrades while the bus keeps dropping deliveries: the
// dropped counter grew since the previous run.
func EventsCheck(dropped func() uint64) CheckFunc {
	var last atomic.Uint64
	return func() Check {
		d := dropped()
		prev := last.Swap(d)
		c := Check{
			Status:  StatusHealthy,
			Message: "no recent drops",
			Details: map[string]any{"dropped_total": d},
		}
		if d > prev {
			c.Status = StatusDegraded
			c.Message = fmt.Sprintf("%d events dropped since last check", d-prev)
		}
		return c
	}
}

// SchemaCheck reports unit types the engine can create but that have no
// port schema, so their connections are only checked on fallback.
func SchemaCheck(coverage func() ports.Coverage, supported func() []units.Type) CheckFunc {
	return func() Check {
		cov := coverage()
		missing := make(map[units.Type]bool, len(cov.Missing))
		for _, t := range cov.Missing {
			missing[t] = true
		}

		var uncovered []string
		for _, t := range supported() {
			if missing[t] {
				uncovered = append(uncovered, string(t))
			}
		}

		c := Check{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d types with schemas", cov.Defined),
			Details: map[string]any{"defined": cov.Defined},
		}
		if len(uncovered) > 0 {
			c.Status = StatusDegraded
			c.Message = fmt.Sprintf("%d creatable types fall back to a single audio port", len(uncovered))
			c.Details["uncovered"] = uncovered
		}
		return c
	}
}
