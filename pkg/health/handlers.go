package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the report of p as JSON. Overall reports answer 200 while
// degraded; readiness and liveness are binary.
func (c *Checker) Handler(p Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := c.Run(p)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode(p, rep.Status))
		_ = json.NewEncoder(w).Encode(rep)
	}
}

func statusCode(p Probe, s Status) int {
	switch {
	case s == StatusHealthy:
		return http.StatusOK
	case s == StatusDegraded && p == Overall:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

// Mount registers the three probes on mux under /health, /ready and /live.
func (c *Checker) Mount(mux *http.ServeMux) {
	for _, p := range []Probe{Overall, Readiness, Liveness} {
		mux.Handle("/"+string(p), c.Handler(p))
	}
}
