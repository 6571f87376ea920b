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

// Package embedcache computes and owns the two vector tables the graph
// proposer consumes: one embedding per tool (producer semantics) and
// one per (tool, parameter) pair (consumer semantics). It is the sole
// owner of vectors; every other component treats them as read-only.
package embedcache

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/sloopgen/sloop/pkg/corpus"
	"github.com/sloopgen/sloop/pkg/embedclient"
)

// ParamKey identifies one (tool, parameter) pair in the consumer table.
type ParamKey struct {
	Tool      string
	Parameter string
}

// Cache holds the description-vector table (producer side) and the
// parameter-vector table (consumer side). Both are populated by Build
// and are safe to read concurrently once Build returns; Build itself is
// not safe to call concurrently with reads.
type Cache struct {
	BatchSize int

	descVec  map[string][]float32
	paramVec map[ParamKey][]float32

	logger *slog.Logger
}

// New constructs an empty Cache. batchSize <= 0 falls back to 64, the
// default fixed-group size requests are chunked into.
func New(logger *slog.Logger, batchSize int) *Cache {
	if batchSize <= 0 {
		batchSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		BatchSize: batchSize,
		descVec:   make(map[string][]float32),
		paramVec:  make(map[ParamKey][]float32),
		logger:    logger,
	}
}

// item is one pending embedding request, tagged with where its result
// belongs once the batch returns.
type item struct {
	text    string
	isParam bool
	tool    string
	param   string
}

// Build embeds every tool's description and every declared parameter's
// description, in fixed-size batches. A batch that fails to embed is
// logged and skipped entirely: its tools and parameters simply have no
// vector and are invisible to the edge proposer (spec §4.2). Build
// returns an error only when every batch failed, since a cache with no
// vectors cannot support any downstream proposal.
func (c *Cache) Build(ctx context.Context, embedder embedclient.Embedder, tools []*corpus.Tool) error {
	items := planItems(tools)

	var anySucceeded, anyAttempted bool
	for start := 0; start < len(items); start += c.BatchSize {
		end := start + c.BatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		anyAttempted = true

		texts := make([]string, len(batch))
		for i, it := range batch {
			texts[i] = it.text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			c.logger.Warn("embedding batch failed, skipping", "batch_start", start, "batch_size", len(batch), "error", err)
			continue
		}
		if len(vectors) != len(batch) {
			c.logger.Warn("embedding batch returned mismatched count, skipping", "want", len(batch), "got", len(vectors))
			continue
		}

		for i, it := range batch {
			vec := vectors[i]
			if vec == nil {
				continue
			}
			normalized := l2Normalize(vec)
			if it.isParam {
				c.paramVec[ParamKey{Tool: it.tool, Parameter: it.param}] = normalized
			} else {
				c.descVec[it.tool] = normalized
			}
			anySucceeded = true
		}
	}

	if anyAttempted && !anySucceeded {
		return fmt.Errorf("embedcache: no embeddings were obtained from %d candidate texts", len(items))
	}
	return nil
}

// planItems enumerates the description and parameter texts to embed,
// per spec §4.2's fixed phrasing.
func planItems(tools []*corpus.Tool) []item {
	items := make([]item, 0, len(tools)*2)
	for _, tool := range tools {
		items = append(items, item{
			text: fmt.Sprintf("%s: %s", tool.Name, tool.Description),
			tool: tool.Name,
		})
		for _, name := range tool.Parameters.Names {
			prop := tool.Parameters.Properties[name]
			items = append(items, item{
				text:    fmt.Sprintf("Parameter %s: %s", name, prop.Description),
				isParam: true,
				tool:    tool.Name,
				param:   name,
			})
		}
	}
	return items
}

// DescVector returns the description vector for a tool, if present.
func (c *Cache) DescVector(tool string) ([]float32, bool) {
	v, ok := c.descVec[tool]
	return v, ok
}

// ParamVector returns the parameter vector for a (tool, parameter) pair.
func (c *Cache) ParamVector(tool, param string) ([]float32, bool) {
	v, ok := c.paramVec[ParamKey{Tool: tool, Parameter: param}]
	return v, ok
}

// DescVectors returns the full producer-side table. Callers must treat
// the returned map as read-only.
func (c *Cache) DescVectors() map[string][]float32 {
	return c.descVec
}

// ParamVectors returns the full consumer-side table. Callers must treat
// the returned map as read-only.
func (c *Cache) ParamVectors() map[ParamKey][]float32 {
	return c.paramVec
}

// l2Normalize returns a unit-length copy of v, regardless of whether the
// embedding backend already normalizes. A zero vector is returned
// unchanged to avoid dividing by zero.
func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
