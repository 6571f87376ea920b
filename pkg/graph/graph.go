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

// Package graph builds and holds the tool dependency multigraph: the
// candidate proposer (C4), the LLM-adjudicated verifier (C5), and the
// assembler that materializes and prunes the final structure (C6). The
// graph type itself is a small in-house directed multigraph — nodes
// keyed by tool name, parallel edges keyed by (producer, consumer,
// parameter) — rather than a general-purpose graph library, since the
// operations the rest of the pipeline needs (out-neighbors, weakly
// connected components, edge lookup by triple) are a short, fixed set.
package graph

import (
	"fmt"

	"github.com/sloopgen/sloop/pkg/corpus"
)

// Node carries the tool attributes the graph retains so downstream
// consumers (sampler, intent synthesizer) never need to reopen the
// registry (spec §4.6).
type Node struct {
	Name        string
	Description string
	Category    string
	Parameters  corpus.ParameterSchema
}

// EdgeKey is the multigraph's parallel-edge discriminator: the same
// ordered pair of tools may carry one edge per satisfying parameter.
type EdgeKey struct {
	Producer  string
	Consumer  string
	Parameter string
}

// Edge is one directed, weighted dependency: Producer's output can
// satisfy Consumer's Parameter.
type Edge struct {
	Producer  string
	Consumer  string
	Parameter string
	Weight    float32
}

// Key returns the edge's multigraph discriminator.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Producer: e.Producer, Consumer: e.Consumer, Parameter: e.Parameter}
}

// Graph is a directed multigraph with node attributes and parallel,
// parameter-keyed edges. Zero value is not usable; use New.
type Graph struct {
	nodes map[string]Node
	edges map[EdgeKey]Edge

	// out/in index edges by endpoint for O(degree) traversal without
	// scanning the full edge map.
	out map[string][]EdgeKey
	in  map[string][]EdgeKey
}

// New constructs an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[EdgeKey]Edge),
		out:   make(map[string][]EdgeKey),
		in:    make(map[string][]EdgeKey),
	}
}

// AddNode inserts or overwrites a node's attributes.
func (g *Graph) AddNode(n Node) {
	g.nodes[n.Name] = n
}

// HasNode reports whether a tool is present as a node.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Node returns a node's attributes.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes in unspecified order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AddEdge inserts an edge, enforcing the no-self-loop invariant and
// both-endpoints-are-nodes invariant (spec §3). On a colliding key, the
// higher-weight edge wins so assembly is deterministic regardless of
// input order (spec §4.6); this should not normally occur since
// (producer, consumer, parameter) uniquely identifies a candidate, but
// is specified to make assembly well-defined.
func (g *Graph) AddEdge(e Edge) error {
	if e.Producer == e.Consumer {
		return fmt.Errorf("graph: self-loop rejected for %q", e.Producer)
	}
	if !g.HasNode(e.Producer) {
		return fmt.Errorf("graph: producer %q is not a node", e.Producer)
	}
	if !g.HasNode(e.Consumer) {
		return fmt.Errorf("graph: consumer %q is not a node", e.Consumer)
	}

	key := e.Key()
	if existing, ok := g.edges[key]; ok {
		if e.Weight <= existing.Weight {
			return nil
		}
		g.edges[key] = e
		return nil
	}

	g.edges[key] = e
	g.out[e.Producer] = append(g.out[e.Producer], key)
	g.in[e.Consumer] = append(g.in[e.Consumer], key)
	return nil
}

// Edge looks up one edge by its full key.
func (g *Graph) Edge(key EdgeKey) (Edge, bool) {
	e, ok := g.edges[key]
	return e, ok
}

// Edges returns all edges in unspecified order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// OutEdges returns the edges leaving a node.
func (g *Graph) OutEdges(name string) []Edge {
	keys := g.out[name]
	out := make([]Edge, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.edges[k])
	}
	return out
}

// InEdges returns the edges entering a node.
func (g *Graph) InEdges(name string) []Edge {
	keys := g.in[name]
	out := make([]Edge, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.edges[k])
	}
	return out
}

// OutDegree returns the number of edges leaving a node, counting
// parallel edges separately.
func (g *Graph) OutDegree(name string) int {
	return len(g.out[name])
}

// RemoveNode deletes a node and every edge incident to it.
func (g *Graph) RemoveNode(name string) {
	for _, key := range append([]EdgeKey(nil), g.out[name]...) {
		g.removeEdgeKey(key)
	}
	for _, key := range append([]EdgeKey(nil), g.in[name]...) {
		g.removeEdgeKey(key)
	}
	delete(g.nodes, name)
	delete(g.out, name)
	delete(g.in, name)
}

func (g *Graph) removeEdgeKey(key EdgeKey) {
	e, ok := g.edges[key]
	if !ok {
		return
	}
	delete(g.edges, key)
	g.out[e.Producer] = removeKey(g.out[e.Producer], key)
	g.in[e.Consumer] = removeKey(g.in[e.Consumer], key)
}

func removeKey(keys []EdgeKey, target EdgeKey) []EdgeKey {
	out := keys[:0]
	for _, k := range keys {
		if k != target {
			out = append(out, k)
		}
	}
	return out
}
