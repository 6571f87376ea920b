// Copyright 2026 The Sloop Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpapi exposes the factory's thin operational HTTP surface:
// a health check, the Prometheus scrape endpoint, and a read-only view
// of the current sampler coverage. The dialogue simulator and any
// request-serving API are explicitly out of scope (spec.md §1); this
// package only exists so a long-running build/sample process has
// something for a load balancer and a scraper to poll.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sloopgen/sloop/pkg/sampler"
)

// CoverageSource reports the current sampler's coverage ratio, the
// fraction of graph edges visited at least once, for /v1/coverage. The
// pipeline's Sampler already exposes Coverage(); this is the minimal
// slice of it the HTTP surface needs.
type CoverageSource interface {
	Coverage() float64
}

// NewRouter builds the chi router. gatherer may be nil to use the global
// Prometheus default gatherer.
func NewRouter(source CoverageSource, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/v1/coverage", handleCoverage(source))

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type coverageResponse struct {
	Coverage float64 `json:"coverage"`
}

func handleCoverage(source CoverageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if source == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "no sampler attached yet"})
			return
		}
		_ = json.NewEncoder(w).Encode(coverageResponse{Coverage: source.Coverage()})
	}
}

var _ CoverageSource = (*sampler.Sampler)(nil)
