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

package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/sloopgen/sloop/pkg/graph"
)

// nodeLinkNode is one entry of the node-link export's "nodes" array.
type nodeLinkNode struct {
	ID         string `json:"id"`
	Desc       string `json:"desc"`
	Category   string `json:"category"`
	Parameters any    `json:"parameters"`
}

// nodeLinkEdge is one entry of the node-link export's "links" array.
type nodeLinkEdge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Key       string  `json:"key"`
	Relation  string  `json:"relation"`
	Parameter string  `json:"parameter"`
	Weight    float32 `json:"weight"`
}

// nodeLinkGraph is the wire shape fixed by the external interface
// contract (spec §6).
type nodeLinkGraph struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Nodes      []nodeLinkNode `json:"nodes"`
	Links      []nodeLinkEdge `json:"links"`
}

// ExportGraphJSON serializes g as node-link JSON.
func ExportGraphJSON(g *graph.Graph) ([]byte, error) {
	doc := nodeLinkGraph{Directed: true, Multigraph: true}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, nodeLinkNode{
			ID:         n.Name,
			Desc:       n.Description,
			Category:   n.Category,
			Parameters: n.Parameters,
		})
	}
	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, nodeLinkEdge{
			Source:    e.Producer,
			Target:    e.Consumer,
			Key:       fmt.Sprintf("%s->%s:%s", e.Producer, e.Consumer, e.Parameter),
			Relation:  "provides_parameter",
			Parameter: e.Parameter,
			Weight:    e.Weight,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// ImportGraphJSON rehydrates a graph.Graph from node-link JSON
// previously produced by ExportGraphJSON.
func ImportGraphJSON(data []byte) (*graph.Graph, error) {
	var doc nodeLinkGraph
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persistence: decode graph json: %w", err)
	}

	g := graph.New()
	for _, n := range doc.Nodes {
		g.AddNode(graph.Node{Name: n.ID, Description: n.Desc, Category: n.Category})
	}
	for _, link := range doc.Links {
		if err := g.AddEdge(graph.Edge{
			Producer:  link.Source,
			Consumer:  link.Target,
			Parameter: link.Parameter,
			Weight:    link.Weight,
		}); err != nil {
			return nil, fmt.Errorf("persistence: rehydrate edge %s: %w", link.Key, err)
		}
	}
	return g, nil
}
