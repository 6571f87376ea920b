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

// Package pipeline wires the tool-dependency-graph factory's stages
// (C1-C8) behind a single Builder, replacing the teacher's global
// mutable logger and singleton metrics with an explicit Reporter
// carried by every stage.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Reporter bundles structured logging, trace spans, and metric
// emission behind one seam so pipeline stages never reach for a
// package-level logger or a global Prometheus registry.
type Reporter struct {
	logger *slog.Logger
	tracer trace.Tracer

	toolsEmbedded      prometheus.Counter
	candidatesProposed prometheus.Counter
	candidatesVerified prometheus.Counter
	candidatesAccepted prometheus.Counter
	skeletonsProduced  prometheus.Counter
	intentsProduced    prometheus.Counter
	coverageRatio      prometheus.Gauge
}

// NewReporter builds a Reporter. Pass nil for logger/tracer/registerer
// to fall back to slog.Default(), a no-op tracer, and a fresh private
// Prometheus registry respectively.
func NewReporter(logger *slog.Logger, tracer trace.Tracer, reg prometheus.Registerer) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("sloop/pipeline")
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Reporter{logger: logger, tracer: tracer}

	r.toolsEmbedded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sloop_tools_embedded_total",
		Help: "Tools for which both description and parameter embeddings were obtained.",
	})
	r.candidatesProposed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sloop_edge_candidates_proposed_total",
		Help: "Edge candidates surfaced by cosine-similarity recall.",
	})
	r.candidatesVerified = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sloop_edge_candidates_verified_total",
		Help: "Edge candidates sent to LLM adjudication.",
	})
	r.candidatesAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sloop_edge_candidates_accepted_total",
		Help: "Edge candidates accepted into the graph, auto-accept or verified.",
	})
	r.skeletonsProduced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sloop_task_skeletons_produced_total",
		Help: "Task skeletons produced by the sampler.",
	})
	r.intentsProduced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sloop_user_intents_produced_total",
		Help: "User intents accepted by the synthesizer.",
	})
	r.coverageRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sloop_sampler_coverage_ratio",
		Help: "Fraction of graph edges visited by the sampler so far.",
	})

	reg.MustRegister(
		r.toolsEmbedded, r.candidatesProposed, r.candidatesVerified,
		r.candidatesAccepted, r.skeletonsProduced, r.intentsProduced, r.coverageRatio,
	)
	return r
}

// Logger returns the underlying structured logger.
func (r *Reporter) Logger() *slog.Logger { return r.logger }

// StartSpan starts a span for a named pipeline stage and returns the
// derived context plus a finish func that records the error (if any)
// and ends the span.
func (r *Reporter) StartSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := r.tracer.Start(ctx, stage, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.SetAttributes(attribute.Int64("duration_ms", time.Since(start).Milliseconds()))
		span.End()
	}
}

func (r *Reporter) ObserveToolsEmbedded(n int)      { r.toolsEmbedded.Add(float64(n)) }
func (r *Reporter) ObserveCandidatesProposed(n int) { r.candidatesProposed.Add(float64(n)) }
func (r *Reporter) ObserveCandidatesVerified(n int) { r.candidatesVerified.Add(float64(n)) }
func (r *Reporter) ObserveCandidatesAccepted(n int) { r.candidatesAccepted.Add(float64(n)) }
func (r *Reporter) ObserveSkeletonsProduced(n int)  { r.skeletonsProduced.Add(float64(n)) }
func (r *Reporter) ObserveIntentsProduced(n int)    { r.intentsProduced.Add(float64(n)) }
func (r *Reporter) SetCoverageRatio(v float64)      { r.coverageRatio.Set(v) }
