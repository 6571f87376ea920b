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
	"github.com/sloopgen/sloop/pkg/corpus"
)

// MinComponentSize is the pruning floor: weakly connected components
// smaller than this are removed entirely (spec §4.6).
const MinComponentSize = 2

// Assemble materializes the final graph: one node per tool carrying its
// full attributes, and edges from the union of auto-accepted and
// verified candidates. When pruneIsolates is true it then removes
// components smaller than MinComponentSize (spec §4.6, the
// prune_isolates config tunable).
func Assemble(tools []*corpus.Tool, autoAccepted, verified []EdgeCandidate, pruneIsolates bool) *Graph {
	g := New()
	for _, tool := range tools {
		g.AddNode(Node{
			Name:        tool.Name,
			Description: tool.Description,
			Category:    tool.Category,
			Parameters:  tool.Parameters,
		})
	}

	for _, cand := range autoAccepted {
		_ = g.AddEdge(Edge{Producer: cand.Producer, Consumer: cand.Consumer, Parameter: cand.Parameter, Weight: cand.Score})
	}
	for _, cand := range verified {
		_ = g.AddEdge(Edge{Producer: cand.Producer, Consumer: cand.Consumer, Parameter: cand.Parameter, Weight: cand.Score})
	}

	if pruneIsolates {
		g.PruneSmallComponents(MinComponentSize)
	}
	return g
}

// Partition splits candidates into auto-accept, verify, and discard
// tiers per cfg's thresholds (spec §4.4).
func Partition(candidates []EdgeCandidate, cfg ProposerConfig) (autoAccept, verify, discard []EdgeCandidate) {
	for _, cand := range candidates {
		switch cfg.Classify(cand.Score) {
		case TierAutoAccept:
			autoAccept = append(autoAccept, cand)
		case TierVerify:
			verify = append(verify, cand)
		default:
			discard = append(discard, cand)
		}
	}
	return autoAccept, verify, discard
}
