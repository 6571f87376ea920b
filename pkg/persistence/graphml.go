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
	"encoding/xml"
	"fmt"

	"github.com/sloopgen/sloop/pkg/graph"
)

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphmlNode struct {
	XMLName xml.Name      `xml:"node"`
	ID      string        `xml:"id,attr"`
	Data    []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	XMLName xml.Name      `xml:"edge"`
	Source  string        `xml:"source,attr"`
	Target  string        `xml:"target,attr"`
	Data    []graphmlData `xml:"data"`
}

type graphmlKey struct {
	XMLName  xml.Name `xml:"key"`
	ID       string   `xml:"id,attr"`
	For      string   `xml:"for,attr"`
	AttrName string   `xml:"attr.name,attr"`
	AttrType string   `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	XMLName     xml.Name `xml:"graph"`
	EdgeDefault string   `xml:"edgedefault,attr"`
	Nodes       []graphmlNode
	Edges       []graphmlEdge
}

type graphmlDoc struct {
	XMLName xml.Name `xml:"http://graphml.graphdrawing.org/xmlns graphml"`
	Keys    []graphmlKey
	Graph   graphmlGraph
}

// ExportGraphML serializes g as standard GraphML, stringifying any
// non-scalar node/edge attribute (spec §6): parameter_schema becomes a
// JSON string rather than nested GraphML structure, since GraphML has
// no native support for nested dict/list attributes.
func ExportGraphML(g *graph.Graph) ([]byte, error) {
	doc := graphmlDoc{
		Keys: []graphmlKey{
			{ID: "d_desc", For: "node", AttrName: "desc", AttrType: "string"},
			{ID: "d_category", For: "node", AttrName: "category", AttrType: "string"},
			{ID: "d_parameters", For: "node", AttrName: "parameter_schema", AttrType: "string"},
			{ID: "d_parameter", For: "edge", AttrName: "parameter", AttrType: "string"},
			{ID: "d_weight", For: "edge", AttrName: "weight", AttrType: "double"},
			{ID: "d_relation", For: "edge", AttrName: "relation", AttrType: "string"},
		},
		Graph: graphmlGraph{EdgeDefault: "directed"},
	}

	for _, n := range g.Nodes() {
		paramsJSON, err := json.Marshal(n.Parameters)
		if err != nil {
			return nil, fmt.Errorf("persistence: marshal parameter schema for %s: %w", n.Name, err)
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: n.Name,
			Data: []graphmlData{
				{Key: "d_desc", Value: n.Description},
				{Key: "d_category", Value: n.Category},
				{Key: "d_parameters", Value: string(paramsJSON)},
			},
		})
	}

	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: e.Producer,
			Target: e.Consumer,
			Data: []graphmlData{
				{Key: "d_parameter", Value: e.Parameter},
				{Key: "d_weight", Value: fmt.Sprintf("%v", e.Weight)},
				{Key: "d_relation", Value: "provides_parameter"},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persistence: marshal graphml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
