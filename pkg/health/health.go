// Package health aggregates named checks over a running patchbay into
// overall, readiness and liveness reports.
package health

import (
	"sort"
	"sync"
	"time"
)

// Status represents the health of one check or of a whole report.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// worse reports whether s ranks below o.
func (s Status) worse(o Status) bool {
	return s.rank() > o.rank()
}

func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Probe selects which set of checks to run.
type Probe string

const (
	Overall   Probe = "health"
	Readiness Probe = "ready"
	Liveness  Probe = "live"
)

// Check is the outcome of one check.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc performs a check.
type CheckFunc func() Check

// Report is the aggregated result of one probe.
type Report struct {
	Probe     Probe            `json:"probe"`
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    time.Duration    `json:"uptime_seconds"`
}

// Failing returns the names of checks that are not healthy, sorted.
func (r Report) Failing() []string {
	var out []string
	for name, c := range r.Checks {
		if c.Status != StatusHealthy {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Checker holds the registered checks of each probe.
type Checker struct {
	mu      sync.RWMutex
	checks  map[Probe]map[string]CheckFunc
	started time.Time
	now     func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a checker with no checks. Uptime counts from here.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		checks: map[Probe]map[string]CheckFunc{
			Overall:   {},
			Readiness: {},
			Liveness:  {},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.started = c.now()
	return c
}

// Register adds fn under name to each of probes, or to Overall when none
// are given. A later registration under the same name replaces the earlier.
func (c *Checker) Register(name string, fn CheckFunc, probes ...Probe) {
	if len(probes) == 0 {
		probes = []Probe{Overall}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range probes {
		if c.checks[p] == nil {
			c.checks[p] = make(map[string]CheckFunc)
		}
		c.checks[p][name] = fn
	}
}

// Names lists the checks registered for p, sorted.
func (c *Checker) Names(p Probe) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.checks[p]))
	for name := range c.checks[p] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run executes every check of p. The worst status wins; a probe with no
// checks is healthy.
func (c *Checker) Run(p Probe) Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	rep := Report{
		Probe:     p,
		Status:    StatusHealthy,
		Timestamp: now,
		Checks:    make(map[string]Check, len(c.checks[p])),
		Uptime:    now.Sub(c.started),
	}

	for name, fn := range c.checks[p] {
		start := c.now()
		check := fn()
		check.Name = name
		check.LastChecked = start
		check.Duration = c.now().Sub(start)
		rep.Checks[name] = check

		if check.Status.worse(rep.Status) {
			rep.Status = check.Status
		}
	}
	return rep
}
