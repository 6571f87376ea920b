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

package intent

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sloopgen/sloop/pkg/graph"
	"github.com/sloopgen/sloop/pkg/llmclient"
	"github.com/sloopgen/sloop/pkg/sampler"
)

// GeneratorVersion is stamped into every synthesized intent's meta so
// consumers can tell which prompt/validation revision produced it.
const GeneratorVersion = "sloop-intent-v1"

// MaxRetries bounds both JSON-parse retries and validation-failure
// retries (spec §4.8 specifies 3 retries on parse failure; validation
// failures are treated the same way here since both represent a
// malformed response worth one more attempt).
const MaxRetries = 3

// Synthesize elicits a UserIntent for one skeleton's core chain. It
// returns an error (and no intent) if every retry is exhausted without
// a validated response; the caller is expected to skip the skeleton in
// that case, per spec §7's C8 failure semantics.
func Synthesize(ctx context.Context, logger *slog.Logger, chat llmclient.Chat, g *graph.Graph, skel sampler.TaskSkeleton) (*UserIntent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	schema, err := generateResponseSchema()
	if err != nil {
		return nil, fmt.Errorf("intent: generate schema: %w", err)
	}

	system := "You invent a realistic user request and the key-value state it implies, for a chain of API tools. Respond with a single JSON object matching the given schema. Every value in initial_state and final_state must be a plain string, number, or boolean — never a list or nested object. Every value you put in initial_state must appear verbatim as a substring of query."
	user := buildPrompt(g, skel)

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		raw, err := chat.Chat(ctx, system, user, schema)
		if err != nil {
			lastErr = err
			continue
		}

		var resp responseSchema
		if err := llmclient.ExtractJSON(raw, &resp); err != nil {
			lastErr = fmt.Errorf("unparseable response: %w", err)
			continue
		}

		if err := validate(resp, skel); err != nil {
			lastErr = err
			continue
		}

		return toUserIntent(resp, skel), nil
	}

	return nil, fmt.Errorf("intent: exhausted %d retries: %w", MaxRetries, lastErr)
}

func buildPrompt(g *graph.Graph, skel sampler.TaskSkeleton) string {
	var coreNames []string
	if skel.Meta != nil {
		coreNames = skel.Meta.CoreChainNodes
	} else {
		for _, n := range skel.Nodes {
			coreNames = append(coreNames, n.Name)
		}
	}

	type compactTool struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Parameters  any    `json:"parameters"`
	}
	tools := make([]compactTool, 0, len(coreNames))
	for _, name := range coreNames {
		node, ok := g.Node(name)
		if !ok {
			continue
		}
		tools = append(tools, compactTool{Name: node.Name, Description: node.Description, Parameters: node.Parameters})
	}
	toolsJSON, _ := json.Marshal(tools)

	var chain strings.Builder
	for _, e := range skel.Edges {
		fmt.Fprintf(&chain, "Step %d: %s → %s (Passes output to parameter: '%s')\n", e.Step, e.From, e.To, e.Dependency.Parameter)
	}

	return fmt.Sprintf("Tools:\n%s\n\nChain:\n%s", string(toolsJSON), chain.String())
}

// validate enforces spec §4.8's post-validation rules: flatness (via
// json.Unmarshal into map[string]any, any value is string/number/bool/
// nil/slice/map but responseSchema already constrains the Go type to
// map[string]any so a slice or nested object decodes as []any or
// map[string]any — rejected explicitly below), grounding, and no
// intermediate-parameter leakage.
func validate(resp responseSchema, skel sampler.TaskSkeleton) error {
	if err := checkFlat(resp.InitialState); err != nil {
		return fmt.Errorf("initial_state: %w", err)
	}
	if err := checkFlat(resp.FinalState); err != nil {
		return fmt.Errorf("final_state: %w", err)
	}

	for key, val := range resp.InitialState {
		str := fmt.Sprintf("%v", val)
		if !strings.Contains(resp.Query, str) {
			return fmt.Errorf("initial_state[%s]=%v does not appear in query", key, val)
		}
	}

	intermediateParams := make(map[string]bool)
	for i, e := range skel.Edges {
		if i == 0 {
			continue
		}
		intermediateParams[e.Dependency.Parameter] = true
	}
	for key := range resp.InitialState {
		if intermediateParams[key] {
			return fmt.Errorf("initial_state leaks intermediate parameter %q", key)
		}
	}

	return nil
}

func checkFlat(state map[string]any) error {
	for key, val := range state {
		switch val.(type) {
		case string, float64, bool, int, int64, nil:
			continue
		default:
			return fmt.Errorf("key %q has non-flat value %v", key, val)
		}
	}
	return nil
}

func toUserIntent(resp responseSchema, skel sampler.TaskSkeleton) *UserIntent {
	sig := skel.EdgesSignature()
	hash := md5.Sum([]byte(sig))

	available := make([]string, 0, len(skel.Nodes))
	for _, n := range skel.Nodes {
		available = append(available, n.Name)
	}

	return &UserIntent{
		Query:          resp.Query,
		InitialState:   resp.InitialState,
		FinalState:     resp.FinalState,
		AvailableTools: available,
		Meta: Meta{
			SkeletonID:       "skel_" + hex.EncodeToString(hash[:]),
			Scenario:         resp.ScenarioSummary,
			Pattern:          string(skel.Pattern),
			GeneratorVersion: GeneratorVersion,
		},
	}
}
