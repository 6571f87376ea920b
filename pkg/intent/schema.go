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

// Package intent elicits a concrete user query and initial/final
// key-value state for a sampled task skeleton (C8).
package intent

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// responseSchema mirrors the shape the LLM must return; jsonschema tags
// drive the generated schema passed to Chat.
type responseSchema struct {
	ScenarioSummary string         `json:"scenario_summary" jsonschema:"required,description=One-sentence summary of the scenario"`
	InitialState    map[string]any `json:"initial_state" jsonschema:"required,description=Flat map of entities mentioned literally in the query"`
	FinalState      map[string]any `json:"final_state" jsonschema:"required,description=Flat map describing the end state after the tool chain runs"`
	Query           string         `json:"query" jsonschema:"required,description=The user's natural-language request"`
}

// generateResponseSchema produces the JSON Schema handed to Chat as a
// structured-output hint. Required fields come from the jsonschema tags,
// the struct is expanded inline, and no $ref definitions are emitted.
func generateResponseSchema() (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(responseSchema))

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("intent: marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("intent: unmarshal schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}
