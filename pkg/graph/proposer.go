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

package graph

import (
	"sort"

	"github.com/sloopgen/sloop/pkg/embedcache"
)

// EdgeCandidate is C4's output: a producer/consumer/parameter triple
// with its cosine similarity score, not yet adjudicated.
type EdgeCandidate struct {
	Producer  string
	Consumer  string
	Parameter string
	Score     float32
}

// ProposerConfig holds the three threshold knobs that partition
// candidates into auto-accept, verify, and discard tiers (spec §4.4).
type ProposerConfig struct {
	RecallThreshold     float32
	AutoAcceptThreshold float32
	TopK                int
}

// DefaultProposerConfig returns the spec's documented defaults.
func DefaultProposerConfig() ProposerConfig {
	return ProposerConfig{
		RecallThreshold:     0.68,
		AutoAcceptThreshold: 0.88,
		TopK:                5,
	}
}

// consumerParam names one column of the consumer matrix.
type consumerParam struct {
	tool  string
	param string
}

// Propose computes cosine similarity (a plain dot product, since both
// tables are L2-normalized at the embedding cache boundary) between
// every producer's description vector and every consumer parameter's
// vector, and emits the top-K candidates above RecallThreshold for each
// consumer-parameter column. Self-edges (producer == consumer) are
// filtered here, before verification, per spec §4.4.
func Propose(cache *embedcache.Cache, cfg ProposerConfig) []EdgeCandidate {
	producers := sortedKeys(cache.DescVectors())

	type column struct {
		key consumerParam
		vec []float32
	}
	var columns []column
	for key, vec := range cache.ParamVectors() {
		columns = append(columns, column{key: consumerParam{tool: key.Tool, param: key.Parameter}, vec: vec})
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i].key.tool != columns[j].key.tool {
			return columns[i].key.tool < columns[j].key.tool
		}
		return columns[i].key.param < columns[j].key.param
	})

	var candidates []EdgeCandidate
	for _, col := range columns {
		type scored struct {
			producer string
			score    float32
		}
		var scores []scored
		for _, producer := range producers {
			if producer == col.key.tool {
				continue
			}
			pvec, _ := cache.DescVector(producer)
			score := dot(pvec, col.vec)
			if score <= cfg.RecallThreshold {
				continue
			}
			scores = append(scores, scored{producer: producer, score: score})
		}

		sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
		if cfg.TopK > 0 && len(scores) > cfg.TopK {
			scores = scores[:cfg.TopK]
		}

		for _, s := range scores {
			candidates = append(candidates, EdgeCandidate{
				Producer:  s.producer,
				Consumer:  col.key.tool,
				Parameter: col.key.param,
				Score:     s.score,
			})
		}
	}

	return candidates
}

// Tier classifies a candidate's score against the configured
// thresholds into one of the three partitions spec §4.4 defines.
type Tier int

const (
	TierDiscard Tier = iota
	TierVerify
	TierAutoAccept
)

func (cfg ProposerConfig) Classify(score float32) Tier {
	switch {
	case score >= cfg.AutoAcceptThreshold:
		return TierAutoAccept
	case score >= cfg.RecallThreshold:
		return TierVerify
	default:
		return TierDiscard
	}
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func sortedKeys(m map[string][]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
