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

package pipeline

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sloopgen/sloop/pkg/categorizer"
	"github.com/sloopgen/sloop/pkg/config"
	"github.com/sloopgen/sloop/pkg/corpus"
	"github.com/sloopgen/sloop/pkg/embedcache"
	"github.com/sloopgen/sloop/pkg/embedclient"
	"github.com/sloopgen/sloop/pkg/graph"
	"github.com/sloopgen/sloop/pkg/llmclient"
	"github.com/sloopgen/sloop/pkg/sloop/errs"
)

// Builder wires the tool registry, embedding cache, categorizer, edge
// proposer/verifier and graph assembler (C1-C6) into a single
// BuildGraph call. It holds no global state: every dependency is
// passed to New explicitly, per the observer/reporter Design Note.
type Builder struct {
	cfg      config.Config
	embedder embedclient.Embedder
	chat     llmclient.Chat
	reporter *Reporter
}

// New builds a Builder. reporter may be nil to use defaults.
func New(cfg config.Config, embedder embedclient.Embedder, chat llmclient.Chat, reporter *Reporter) *Builder {
	if reporter == nil {
		reporter = NewReporter(nil, nil, nil)
	}
	return &Builder{cfg: cfg, embedder: embedder, chat: chat, reporter: reporter}
}

// Result is the materialized output of a full BuildGraph run.
type Result struct {
	Tools      []*corpus.Tool
	Embeddings *embedcache.Cache
	Graph      *graph.Graph
}

// BuildGraph runs C1 (parse) through C6 (assemble) over a tool corpus
// read from r, in pipeline order: load tools, embed them, categorize
// the uncategorized ones, propose candidate edges from cosine
// similarity, adjudicate the uncertain band with an LLM, and assemble
// the pruned graph.
func (b *Builder) BuildGraph(ctx context.Context, r io.Reader) (*Result, error) {
	ctx, done := b.reporter.StartSpan(ctx, "pipeline.build_graph")
	var err error
	defer func() { done(err) }()

	tools, loadErr := b.loadTools(ctx, r)
	if loadErr != nil {
		err = loadErr
		return nil, err
	}

	cache, buildErr := b.embedTools(ctx, tools)
	if buildErr != nil {
		err = buildErr
		return nil, err
	}

	if catErr := b.categorizeTools(ctx, tools); catErr != nil {
		err = catErr
		return nil, err
	}

	g, assembleErr := b.assembleGraph(ctx, tools, cache)
	if assembleErr != nil {
		err = assembleErr
		return nil, err
	}

	return &Result{Tools: tools, Embeddings: cache, Graph: g}, nil
}

func (b *Builder) loadTools(ctx context.Context, r io.Reader) ([]*corpus.Tool, error) {
	_, done := b.reporter.StartSpan(ctx, "pipeline.load_tools")
	reg := corpus.NewRegistry(b.reporter.Logger())
	if err := reg.Load(r); err != nil {
		wrapped := errs.New(errs.MalformedInput, "corpus", err)
		done(wrapped)
		return nil, wrapped
	}
	done(nil)
	tools := reg.List()
	b.reporter.Logger().Info("loaded tool corpus", "count", len(tools))
	return tools, nil
}

func (b *Builder) embedTools(ctx context.Context, tools []*corpus.Tool) (*embedcache.Cache, error) {
	ctx, done := b.reporter.StartSpan(ctx, "pipeline.embed_tools", attribute.Int("tool_count", len(tools)))
	cache := embedcache.New(b.reporter.Logger(), b.cfg.EmbeddingBatchSize)
	if err := cache.Build(ctx, b.embedder, tools); err != nil {
		wrapped := errs.New(errs.ServiceUnavailable, "embedcache", err)
		done(wrapped)
		return nil, wrapped
	}
	done(nil)
	embedded := 0
	for _, t := range tools {
		if _, ok := cache.DescVector(t.Name); !ok {
			continue
		}
		complete := true
		for _, p := range t.Parameters.Names {
			if _, ok := cache.ParamVector(t.Name, p); !ok {
				complete = false
				break
			}
		}
		if complete {
			embedded++
		}
	}
	b.reporter.ObserveToolsEmbedded(embedded)
	return cache, nil
}

func (b *Builder) categorizeTools(ctx context.Context, tools []*corpus.Tool) error {
	ctx, done := b.reporter.StartSpan(ctx, "pipeline.categorize_tools")
	pool := categorizer.NewPool()
	for _, t := range tools {
		if t.Category != "" && t.Category != corpus.DefaultCategory {
			pool.Add(t.Category)
		}
	}
	err := categorizer.Run(ctx, b.reporter.Logger(), b.chat, tools, pool, b.cfg.MaxWorkers)
	done(err)
	return err
}

func (b *Builder) assembleGraph(ctx context.Context, tools []*corpus.Tool, cache *embedcache.Cache) (*graph.Graph, error) {
	ctx, done := b.reporter.StartSpan(ctx, "pipeline.assemble_graph")
	defer func() { done(nil) }()

	cfg := graph.ProposerConfig{
		RecallThreshold:     b.cfg.RecallThreshold,
		AutoAcceptThreshold: b.cfg.AutoAcceptThreshold,
		TopK:                b.cfg.TopK,
	}
	candidates := graph.Propose(cache, cfg)
	b.reporter.ObserveCandidatesProposed(len(candidates))

	autoAccept, verify, _ := graph.Partition(candidates, cfg)

	// When verification is disabled, recall_threshold becomes the final
	// gate: every mid-confidence candidate is admitted without an LLM
	// call (spec §4.4/§8 scenario S2).
	var verified []graph.EdgeCandidate
	if len(verify) > 0 {
		if b.cfg.EnableLLMVerify {
			b.reporter.ObserveCandidatesVerified(len(verify))
			verified = graph.Verify(ctx, b.reporter.Logger(), b.chat, verify, b.cfg.MaxWorkers)
		} else {
			verified = verify
		}
	}
	b.reporter.ObserveCandidatesAccepted(len(autoAccept) + len(verified))

	g := graph.Assemble(tools, autoAccept, verified, b.cfg.PruneIsolates)
	return g, nil
}
