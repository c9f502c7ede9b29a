// Package params routes named parameter updates onto a live unit: a
// continuously variable control when the unit has one under that name,
// otherwise a writable plain property. Anything else is ignored.
package params

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/metrics"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime"
)

// Report lists what happened to each key of one update.
type Report struct {
	Controls   []string
	Properties []string
	Ignored    []string
	// Errors holds keys that matched a control or property but could not
	// be applied (an unconvertible control value or a rejected Set).
	// Those keys are also in Ignored.
	Errors map[string]error
}

// Applied returns the keys that changed the unit.
func (r Report) Applied() []string {
	out := make([]string, 0, len(r.Controls)+len(r.Properties))
	out = append(out, r.Controls...)
	return append(out, r.Properties...)
}

// Router applies parameter updates.
type Router struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a Router.
type Option func(*Router)

func WithLogger(l logging.Logger) Option {
	return func(r *Router) { r.logger = l }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(r *Router) { r.metrics = m }
}

// NewRouter creates a router.
func NewRouter(opts ...Option) *Router {
	r := &Router{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply routes every key of params onto u, in key order. Unknown keys are
// not errors; UIs may push a superset of a unit's parameters.
func (r *Router) Apply(u runtime.Unit, params map[string]any) Report {
	var rep Report

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := params[key]

		if ctl, ok := u.Control(key); ok {
			f, ok := ToFloat(value)
			if !ok {
				rep.fail(key, fmt.Errorf("control %s: cannot use %T as a number", key, value))
				continue
			}
			ctl.SetValue(f)
			rep.Controls = append(rep.Controls, key)
			continue
		}

		if prop, ok := u.Property(key); ok && prop.Writable() {
			if err := prop.Set(value); err != nil {
				rep.fail(key, fmt.Errorf("property %s: %w", key, err))
				continue
			}
			rep.Properties = append(rep.Properties, key)
			continue
		}

		rep.Ignored = append(rep.Ignored, key)
	}

	r.metrics.RecordParamUpdates(len(rep.Controls), len(rep.Properties), len(rep.Ignored))
	if len(rep.Ignored) > 0 {
		r.logger.Debug("ignored parameter keys",
			logging.UnitType(u.Type()),
			logging.Keys(rep.Ignored))
	}
	for key, err := range rep.Errors {
		r.logger.Warn("parameter not applied",
			logging.UnitType(u.Type()),
			logging.String("key", key),
			logging.Error(err))
	}

	return rep
}

func (r *Report) fail(key string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]error)
	}
	r.Errors[key] = err
	r.Ignored = append(r.Ignored, key)
}

// ToFloat converts a parameter value to a control value. Numbers of any
// kind convert directly, booleans become 0 or 1, and strings are parsed.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
