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

// Package sampler walks the tool dependency graph into TaskSkeleton
// values via a coverage-decayed random walk (C7).
package sampler

import (
	"sort"
	"strings"
)

// Role distinguishes a skeleton node that participates in the sampled
// core chain from one included only as contextual noise.
type Role string

const (
	RoleCore       Role = "core"
	RoleDistractor Role = "distractor"
)

// SkeletonNode is one tool as it appears inside a sampled skeleton.
type SkeletonNode struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Role        Role   `json:"role"`
}

// Dependency names the parameter a skeleton edge satisfies.
type Dependency struct {
	Parameter string `json:"parameter"`
	Relation  string `json:"relation"`
}

// SkeletonEdge is one step of the sampled core chain. From/To are
// rekeyed to "from"/"to" on the wire per the external interface
// contract; the Go field names stay unambiguous in code.
type SkeletonEdge struct {
	Step       int        `json:"step"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Dependency Dependency `json:"dependency"`
}

// Pattern names the shape of a sampled skeleton.
type Pattern string

const (
	PatternSequential  Pattern = "sequential"
	PatternChain       Pattern = "chain"
	PatternNeighborhood Pattern = "neighborhood_subgraph"
)

// SkeletonMeta records the chain/distractor split for neighborhood
// patterns (nil for sequential/chain).
type SkeletonMeta struct {
	CoreChainNodes  []string `json:"core_chain_nodes"`
	DistractorNodes []string `json:"distractor_nodes"`
}

// TaskSkeleton is one sampled, potentially-noisy path through the tool
// dependency graph.
type TaskSkeleton struct {
	Pattern Pattern         `json:"pattern"`
	Nodes   []SkeletonNode  `json:"nodes"`
	Edges   []SkeletonEdge  `json:"edges"`
	Meta    *SkeletonMeta   `json:"meta,omitempty"`
}

// EdgesSignature is the canonical dedup key: the lexicographically
// sorted concatenation of "from->to" over the skeleton's edges (spec
// §3). It intentionally ignores parameter so two skeletons that differ
// only in which parameter was satisfied along an otherwise identical
// path still collide, matching the original implementation's
// MD5-of-signature dedup.
func (s TaskSkeleton) EdgesSignature() string {
	parts := make([]string, len(s.Edges))
	for i, e := range s.Edges {
		parts[i] = e.From + "->" + e.To
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
