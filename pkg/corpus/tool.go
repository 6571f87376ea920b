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

// Package corpus implements the tool registry (C1): parsing the input
// tool corpus and canonicalizing each tool's name, description, and
// parameter schema.
package corpus

// ParameterProperty describes one entry of a tool's parameter schema.
type ParameterProperty struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Items       any      `json:"items,omitempty"`
}

// ParameterSchema is an object schema: an ordered mapping from parameter
// name to its properties, plus the list of required names. Order is
// preserved via Names so producer/consumer formatting is deterministic.
type ParameterSchema struct {
	Names      []string                     `json:"-"`
	Properties map[string]ParameterProperty `json:"properties,omitempty"`
	Required   []string                     `json:"required,omitempty"`
}

// IsEmpty reports whether the schema has no declared properties object.
func (p ParameterSchema) IsEmpty() bool {
	return p.Properties == nil
}

// RequiredSet returns the required parameter names as a lookup set.
func (p ParameterSchema) RequiredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Required))
	for _, name := range p.Required {
		set[name] = struct{}{}
	}
	return set
}

// Tool is the canonical, immutable-after-load record for one tool.
// Category starts as "general" and is overwritten exactly once by the
// categorizer (C3).
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
	Category    string          `json:"category"`
}

// DefaultCategory is the seed value every tool carries until C3 runs.
const DefaultCategory = "general"

// HasDescription reports whether the tool has a non-empty description.
// Registry.Promptable uses it to select the tools eligible for intent
// prompting (C8). The intent synthesizer does not filter on it: a tool
// without a description is still accepted into the registry and graph
// and still appears in the intent prompt of any skeleton containing it.
func (t *Tool) HasDescription() bool {
	return t.Description != ""
}
