// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"

	"github.com/siteserve/siteserve/internal/syncx"
)

const healthPath = "/debug/health"

// Health returns the [HealthReport] served by mux at /debug/health. The first
// call registers it.
func Health(mux *http.ServeMux) *HealthReport {
	h, pat := mux.Handler(&http.Request{URL: &url.URL{Path: healthPath}})
	if hr, ok := h.(*HealthReport); ok && pat == healthPath {
		return hr
	}
	hr := &HealthReport{checks: syncx.Protect(make(map[string]Check))}
	mux.Handle(healthPath, hr)
	return hr
}

// Check tells whether some part of the server works. A nil error means it
// does.
//
// Checks run on every request to /debug/health, possibly concurrently.
type Check func() error

// HealthReport runs the added checks on every request and serves the results
// as JSON. The response status is 503 Service Unavailable if any check fails.
type HealthReport struct {
	checks *syncx.Protected[map[string]Check]
}

// Add adds a check. Names must be unique, Add panics otherwise.
func (h *HealthReport) Add(name string, check Check) {
	h.checks.Access(func(checks map[string]Check) {
		if _, dup := checks[name]; dup {
			panic(fmt.Sprintf("web: health check %q added twice", name))
		}
		checks[name] = check
	})
}

// Status is the outcome of running all checks of a [HealthReport].
type Status struct {
	Healthy bool          `json:"healthy"`
	Checks  []CheckResult `json:"checks"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Run runs all checks, ordered by name.
func (h *HealthReport) Run() Status {
	var checks map[string]Check
	h.checks.RAccess(func(m map[string]Check) { checks = maps.Clone(m) })

	st := Status{Healthy: true, Checks: []CheckResult{}}
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		res := CheckResult{Name: name, Healthy: true}
		if err := checks[name](); err != nil {
			res.Healthy = false
			res.Error = err.Error()
			st.Healthy = false
		}
		st.Checks = append(st.Checks, res)
	}
	return st
}

func (h *HealthReport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st := h.Run()
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	if st.Healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	respondJSON(w, st, true)
}
