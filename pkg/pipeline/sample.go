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

package pipeline

import (
	"context"

	"github.com/sloopgen/sloop/pkg/graph"
	"github.com/sloopgen/sloop/pkg/intent"
	"github.com/sloopgen/sloop/pkg/sampler"
)

// SampleResult bundles one sampling pass's skeletons, the intents
// synthesized from them, and the sampler's coverage ratio (§8).
type SampleResult struct {
	Report  sampler.BatchReport
	Intents []*intent.UserIntent
}

// SampleAndSynthesize runs C7 (sampler) over g to produce a batch of
// task skeletons, then C8 (intent synthesizer) over each accepted
// skeleton. A skeleton whose synthesis fails after retries is dropped
// from the batch rather than failing the run, per spec §7's
// propagation policy.
func (b *Builder) SampleAndSynthesize(ctx context.Context, g *graph.Graph, s *sampler.Sampler, cfg sampler.BatchConfig) (*SampleResult, error) {
	ctx, done := b.reporter.StartSpan(ctx, "pipeline.sample_and_synthesize")
	defer func() { done(nil) }()

	report := s.GenerateBatch(cfg)
	b.reporter.ObserveSkeletonsProduced(len(report.Skeletons))
	b.reporter.SetCoverageRatio(report.Coverage)

	intents := make([]*intent.UserIntent, 0, len(report.Skeletons))
	for _, skel := range report.Skeletons {
		ui, err := intent.Synthesize(ctx, b.reporter.Logger(), b.chat, g, skel)
		if err != nil {
			b.reporter.Logger().Warn("intent synthesis failed, dropping skeleton", "error", err)
			continue
		}
		intents = append(intents, ui)
	}
	b.reporter.ObserveIntentsProduced(len(intents))

	return &SampleResult{Report: report, Intents: intents}, nil
}
