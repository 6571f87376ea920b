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
	"math/rand/v2"
	"sort"

	"github.com/sloopgen/sloop/pkg/graph"
)

// Sampler walks a read-only graph, maintaining coverage counters
// private to this instance. A single Sampler must not be shared across
// concurrent sampling goroutines (spec §5); spin up one per goroutine
// if parallel sampling is desired.
type Sampler struct {
	g *graph.Graph

	startCount map[string]float64
	edgeVisits map[graph.EdgeKey]int
}

// New constructs a Sampler over g with fresh coverage counters.
func New(g *graph.Graph) *Sampler {
	return &Sampler{
		g:          g,
		startCount: make(map[string]float64),
		edgeVisits: make(map[graph.EdgeKey]int),
	}
}

// ResetCoverage clears both counters, as if the Sampler were freshly
// constructed.
func (s *Sampler) ResetCoverage() {
	s.startCount = make(map[string]float64)
	s.edgeVisits = make(map[graph.EdgeKey]int)
}

// Coverage reports the fraction of graph edges that have been
// traversed by at least one emitted skeleton.
func (s *Sampler) Coverage() float64 {
	total := s.g.EdgeCount()
	if total == 0 {
		return 0
	}
	visited := 0
	for _, e := range s.g.Edges() {
		if s.edgeVisits[e.Key()] > 0 {
			visited++
		}
	}
	return float64(visited) / float64(total)
}

// selectStartNode ranks out-degree>=1 nodes ascending by
// start_count[node] + U[0,1) and returns the smallest, favoring
// under-sampled starts while breaking ties with jitter (spec §4.7).
func (s *Sampler) selectStartNode() (string, bool) {
	var candidates []string
	for _, n := range s.g.Nodes() {
		if s.g.OutDegree(n.Name) > 0 {
			candidates = append(candidates, n.Name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	type scoredName struct {
		name  string
		score float64
	}
	scored := make([]scoredName, len(candidates))
	for i, name := range candidates {
		scored[i] = scoredName{name: name, score: s.startCount[name] + rand.Float64()}
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].score < scored[j].score
	})
	return scored[0].name, true
}

// nextHop collects current's outgoing edges, decays each by
// 1/(1+visits), and samples proportionally; falls back to a uniform
// draw if every edge is fully saturated to zero weight. Edges landing
// on an already-visited node are excluded up front so the walk never
// needs to retry a rejected hop (spec §4.7's simple-path invariant).
func (s *Sampler) nextHop(current string, visited map[string]bool) (graph.Edge, bool) {
	var candidates []graph.Edge
	for _, e := range s.g.OutEdges(current) {
		if visited[e.Consumer] {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return graph.Edge{}, false
	}

	weights := make([]float64, len(candidates))
	var total float64
	for i, e := range candidates {
		decay := 1.0 / (1.0 + float64(s.edgeVisits[e.Key()]))
		weights[i] = float64(e.Weight) * decay
		total += weights[i]
	}

	if total == 0 {
		idx := rand.IntN(len(candidates))
		return candidates[idx], true
	}

	draw := rand.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if draw <= cum {
			return candidates[i], true
		}
	}
	return candidates[len(candidates)-1], true
}

// walkResult is the raw output of one sequential walk attempt, before
// formatting into a TaskSkeleton.
type walkResult struct {
	pathNodes  []string
	edgesTaken []graph.Edge
	start      string
}

// walkSequentialChain performs one walk attempt of a random target
// length in [minLen, maxLen]. A walk shorter than minLen is not
// returned; the caller is responsible for penalizing the start node.
func (s *Sampler) walkSequentialChain(minLen, maxLen int) (*walkResult, string) {
	start, ok := s.selectStartNode()
	if !ok {
		return nil, ""
	}

	targetLen := minLen
	if maxLen > minLen {
		targetLen = minLen + rand.IntN(maxLen-minLen+1)
	}

	pathNodes := []string{start}
	var edgesTaken []graph.Edge
	visited := map[string]bool{start: true}
	curr := start

	for i := 0; i < targetLen-1; i++ {
		hop, ok := s.nextHop(curr, visited)
		if !ok {
			break
		}
		pathNodes = append(pathNodes, hop.Consumer)
		edgesTaken = append(edgesTaken, hop)
		visited[hop.Consumer] = true
		curr = hop.Consumer
	}

	if len(pathNodes) < minLen {
		return nil, start
	}
	return &walkResult{pathNodes: pathNodes, edgesTaken: edgesTaken, start: start}, start
}

// formatSkeleton builds a TaskSkeleton from raw walk output, optionally
// annotating distractor nodes via meta.
func (s *Sampler) formatSkeleton(pattern Pattern, nodes []string, edges []graph.Edge, meta *SkeletonMeta) TaskSkeleton {
	distractors := make(map[string]bool)
	if meta != nil {
		for _, d := range meta.DistractorNodes {
			distractors[d] = true
		}
	}

	skelNodes := make([]SkeletonNode, 0, len(nodes))
	for _, name := range nodes {
		n, _ := s.g.Node(name)
		role := RoleCore
		if distractors[name] {
			role = RoleDistractor
		}
		skelNodes = append(skelNodes, SkeletonNode{
			Name:        n.Name,
			Description: n.Description,
			Category:    n.Category,
			Role:        role,
		})
	}

	skelEdges := make([]SkeletonEdge, 0, len(edges))
	for i, e := range edges {
		skelEdges = append(skelEdges, SkeletonEdge{
			Step: i + 1,
			From: e.Producer,
			To:   e.Consumer,
			Dependency: Dependency{
				Parameter: e.Parameter,
				Relation:  "provides_parameter",
			},
		})
	}

	return TaskSkeleton{Pattern: pattern, Nodes: skelNodes, Edges: skelEdges, Meta: meta}
}
