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

// Package categorizer assigns each tool still at its default category
// to a broad term drawn from (or added to) a monotonically growing
// category pool, via one LLM request per tool.
package categorizer

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sloopgen/sloop/pkg/corpus"
	"github.com/sloopgen/sloop/pkg/llmclient"
)

// seedCategories pre-populates the pool so the first few tools have
// sensible anchors to select from instead of inventing ad hoc terms.
var seedCategories = []string{
	"Sports", "Finance", "Weather", "Utilities", "Entertainment", "Shopping", "Education",
}

// Pool is an add-only, concurrency-safe set of category names. Races
// between concurrent Add calls are benign: the pool is only a hint
// surfaced in prompts, never an invariant the rest of the system relies
// on for correctness.
type Pool struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewPool constructs a pool seeded with the default broad categories.
func NewPool() *Pool {
	p := &Pool{names: make(map[string]struct{}, len(seedCategories))}
	for _, name := range seedCategories {
		p.names[name] = struct{}{}
	}
	return p
}

// Add inserts a category name, a no-op if already present.
func (p *Pool) Add(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[name] = struct{}{}
}

// Snapshot returns the current pool contents, read-only to the caller.
func (p *Pool) Snapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.names))
	for name := range p.names {
		out = append(out, name)
	}
	return out
}

type categoryResponse struct {
	Category string `json:"category"`
}

// Run fans out over every tool whose Category is still corpus.DefaultCategory,
// issuing one Chat request per tool, up to workers concurrent calls. A
// failed or unparseable response leaves that tool uncategorized; it is
// never treated as a pipeline-level error since the categorizer is a
// pure enrichment step (spec §4.3).
func Run(ctx context.Context, logger *slog.Logger, chat llmclient.Chat, tools []*corpus.Tool, pool *Pool, workers int) error {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 50
	}
	if pool == nil {
		pool = NewPool()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, tool := range tools {
		if tool.Category != corpus.DefaultCategory {
			continue
		}
		tool := tool
		group.Go(func() error {
			categorize(groupCtx, logger, chat, tool, pool)
			return nil
		})
	}

	return group.Wait()
}

func categorize(ctx context.Context, logger *slog.Logger, chat llmclient.Chat, tool *corpus.Tool, pool *Pool) {
	system := "You classify API tools into a broad category. Respond with a single JSON object: {\"category\": \"<name>\"}. Prefer selecting from the given pool when one fits; otherwise propose a new short, general category name."
	user := buildPrompt(tool, pool.Snapshot())

	raw, err := chat.Chat(ctx, system, user, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{"type": "string"},
		},
		"required": []string{"category"},
	})
	if err != nil {
		logger.Warn("categorizer chat failed, leaving tool uncategorized", "tool", tool.Name, "error", err)
		return
	}

	var resp categoryResponse
	if err := llmclient.ExtractJSON(raw, &resp); err != nil {
		logger.Warn("categorizer response unparseable, leaving tool uncategorized", "tool", tool.Name, "error", err)
		return
	}

	category := strings.TrimSpace(resp.Category)
	if category == "" {
		return
	}
	category = titleCase(category)

	tool.Category = category
	pool.Add(category)
}

func buildPrompt(tool *corpus.Tool, pool []string) string {
	var b strings.Builder
	b.WriteString("Tool name: ")
	b.WriteString(tool.Name)
	b.WriteString("\nDescription: ")
	b.WriteString(tool.Description)
	b.WriteString("\nExisting category pool: ")
	b.WriteString(strings.Join(pool, ", "))
	return b.String()
}

// titleCase upper-cases the first letter of each whitespace-separated
// word, matching the "title-cased, trimmed" acceptance rule (spec §4.3)
// without pulling in a locale-aware casing dependency for a cosmetic
// transform over short English category labels.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
