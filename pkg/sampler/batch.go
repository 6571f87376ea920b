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

package sampler

import (
	"math"
	"math/rand/v2"

	"github.com/sloopgen/sloop/pkg/graph"
)

// Mode selects which walk shape generateOne produces.
type Mode string

const (
	ModeChain         Mode = "chain"
	ModeNeighborhood  Mode = "neighborhood"
)

// BatchConfig bounds one call to GenerateBatch.
type BatchConfig struct {
	Mode           Mode
	Count          int
	MinLen         int
	MaxLen         int
	ExpansionRatio float64
	MaxRetries     int
}

// DefaultBatchConfig returns the spec's documented defaults.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Mode:           ModeNeighborhood,
		Count:          10,
		MinLen:         3,
		MaxLen:         6,
		ExpansionRatio: 0.5,
		MaxRetries:     500,
	}
}

// BatchReport summarizes one GenerateBatch call, including whether it
// stopped early due to max-retries exhaustion (spec's SamplerExhausted
// is a non-error signal carried in the return value, not raised).
type BatchReport struct {
	Skeletons []TaskSkeleton
	Exhausted bool
	Attempts  int
	Coverage  float64
}

// GenerateBatch repeatedly samples skeletons of the configured mode
// until Count unique skeletons are collected or MaxRetries consecutive
// failures (abort or duplicate) occur.
func (s *Sampler) GenerateBatch(cfg BatchConfig) BatchReport {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 500
	}

	seen := make(map[string]bool)
	var skeletons []TaskSkeleton
	failStreak := 0
	attempts := 0

	for len(skeletons) < cfg.Count {
		attempts++
		skel, edgesTaken, start, ok := s.generateOne(cfg)
		if !ok {
			failStreak++
		} else {
			sig := skel.EdgesSignature()
			if seen[sig] {
				failStreak++
			} else {
				seen[sig] = true
				skeletons = append(skeletons, skel)
				s.startCount[start]++
				for _, e := range edgesTaken {
					s.edgeVisits[e.Key()]++
				}
				failStreak = 0
			}
		}

		if failStreak >= cfg.MaxRetries {
			return BatchReport{Skeletons: skeletons, Exhausted: true, Attempts: attempts, Coverage: s.Coverage()}
		}
	}

	return BatchReport{Skeletons: skeletons, Exhausted: false, Attempts: attempts, Coverage: s.Coverage()}
}

// generateOne performs one sample attempt of cfg.Mode. On abort it
// penalizes the attempted start node (if any) and returns ok=false.
func (s *Sampler) generateOne(cfg BatchConfig) (skel TaskSkeleton, edgesTaken []graph.Edge, start string, ok bool) {
	switch cfg.Mode {
	case ModeChain:
		result, attemptedStart := s.walkSequentialChain(cfg.MinLen, cfg.MaxLen)
		if result == nil {
			if attemptedStart != "" {
				s.startCount[attemptedStart]++
			}
			return TaskSkeleton{}, nil, "", false
		}
		return s.formatSkeleton(PatternChain, result.pathNodes, result.edgesTaken, nil), result.edgesTaken, result.start, true

	default: // ModeNeighborhood
		return s.sampleNeighborhood(cfg)
	}
}

// sampleNeighborhood draws a sequential core, then fills distractor
// slots in two phases: hard negatives from the core's graph neighbors,
// then easy negatives drawn uniformly from the rest of the graph
// (spec §4.7).
func (s *Sampler) sampleNeighborhood(cfg BatchConfig) (TaskSkeleton, []graph.Edge, string, bool) {
	minLen, maxLen := cfg.MinLen, cfg.MaxLen
	if minLen <= 0 {
		minLen = 2
	}
	if maxLen < minLen {
		maxLen = minLen
	}

	result, attemptedStart := s.walkSequentialChain(minLen, maxLen)
	if result == nil {
		if attemptedStart != "" {
			s.startCount[attemptedStart]++
		}
		return TaskSkeleton{}, nil, "", false
	}

	core := make(map[string]bool, len(result.pathNodes))
	for _, n := range result.pathNodes {
		core[n] = true
	}

	ratio := cfg.ExpansionRatio
	if ratio <= 0 {
		ratio = 0.5
	}
	numExtras := int(math.Ceil(float64(len(core))*ratio)) + 1

	var distractors []string

	hardPool := neighborPool(s.g, core)
	if len(hardPool) > 0 {
		takeK := numExtras
		if takeK > len(hardPool) {
			takeK = len(hardPool)
		}
		distractors = append(distractors, sampleWithoutReplacement(hardPool, takeK)...)
	}

	needed := numExtras - len(distractors)
	if needed > 0 {
		exclude := make(map[string]bool, len(core)+len(distractors))
		for n := range core {
			exclude[n] = true
		}
		for _, d := range distractors {
			exclude[d] = true
		}

		var randomPool []string
		for _, n := range s.g.Nodes() {
			if !exclude[n.Name] {
				randomPool = append(randomPool, n.Name)
			}
		}

		if len(randomPool) >= needed {
			distractors = append(distractors, sampleWithoutReplacement(randomPool, needed)...)
		} else {
			distractors = append(distractors, randomPool...)
		}
	}

	allNodes := make([]string, 0, len(result.pathNodes)+len(distractors))
	allNodes = append(allNodes, result.pathNodes...)
	allNodes = append(allNodes, distractors...)
	rand.Shuffle(len(allNodes), func(i, j int) { allNodes[i], allNodes[j] = allNodes[j], allNodes[i] })

	meta := &SkeletonMeta{CoreChainNodes: result.pathNodes, DistractorNodes: distractors}
	skel := s.formatSkeleton(PatternNeighborhood, allNodes, result.edgesTaken, meta)
	return skel, result.edgesTaken, result.start, true
}

// neighborPool returns the union of successors and predecessors of
// every core node, excluding core itself.
func neighborPool(g *graph.Graph, core map[string]bool) []string {
	set := make(map[string]bool)
	for name := range core {
		for _, e := range g.OutEdges(name) {
			set[e.Consumer] = true
		}
		for _, e := range g.InEdges(name) {
			set[e.Producer] = true
		}
	}
	for name := range core {
		delete(set, name)
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}

// sampleWithoutReplacement returns k distinct elements of pool in
// random order via a partial Fisher-Yates shuffle.
func sampleWithoutReplacement(pool []string, k int) []string {
	if k >= len(pool) {
		out := append([]string(nil), pool...)
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	working := append([]string(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + rand.IntN(len(working)-i)
		working[i], working[j] = working[j], working[i]
	}
	return working[:k]
}
