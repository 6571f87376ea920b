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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sloopgen/sloop/pkg/config"
	"github.com/sloopgen/sloop/pkg/embedclient"
	embedproviders "github.com/sloopgen/sloop/pkg/embedclient/providers"
	"github.com/sloopgen/sloop/pkg/llmclient"
	llmproviders "github.com/sloopgen/sloop/pkg/llmclient/providers"
	"github.com/sloopgen/sloop/pkg/persistence"
	"github.com/sloopgen/sloop/pkg/pipeline"
	"github.com/sloopgen/sloop/pkg/sampler"

	"github.com/sloopgen/sloop/internal/httpapi"
)

func buildEmbedder(cfg config.EmbeddingConfig) embedclient.Embedder {
	switch cfg.Provider {
	case "ollama":
		return embedproviders.NewOllamaEmbedder(cfg.Host, cfg.Model)
	default:
		return embedproviders.NewOpenAIEmbedder(cfg.Host, cfg.APIKey, cfg.Model)
	}
}

func buildChat(cfg config.LLMConfig) llmclient.Chat {
	switch cfg.Provider {
	case "anthropic":
		return llmproviders.NewAnthropicChat(cfg.APIKey, cfg.Model)
	default:
		return llmproviders.NewOpenAIChat(cfg.Host, cfg.APIKey, cfg.Model)
	}
}

// BuildGraphCmd runs C1-C6: parse a tool corpus, embed it, categorize
// and propose/verify/assemble the dependency graph, then checkpoint it.
type BuildGraphCmd struct {
	Corpus     string `required:"" help:"Path to the NDJSON tool corpus." type:"path"`
	Checkpoint string `required:"" help:"Path to write the graph checkpoint." type:"path"`
}

func (c *BuildGraphCmd) Run(rc *runContext) error {
	cfg, err := rc.loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(c.Corpus)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	reporter := pipeline.NewReporter(rc.logger, rc.tracer, nil)
	builder := pipeline.New(cfg, buildEmbedder(cfg.Embedding), buildChat(cfg.LLM), reporter)

	result, err := builder.BuildGraph(context.Background(), f)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	if err := persistence.Save(c.Checkpoint, result.Tools, result.Embeddings, result.Graph); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	rc.logger.Info("graph built",
		"tools", len(result.Tools),
		"nodes", result.Graph.NodeCount(),
		"edges", result.Graph.EdgeCount(),
	)
	return nil
}

// SampleCmd runs C7-C8 over a checkpointed graph: sample task
// skeletons and synthesize a user intent for each.
type SampleCmd struct {
	Checkpoint string `required:"" help:"Path to a graph checkpoint produced by build-graph." type:"path"`
	Out        string `required:"" help:"Path to write the synthesized intents JSON." type:"path"`
	Count      int    `default:"10" help:"Number of skeletons to sample."`
	Mode       string `default:"neighborhood" enum:"chain,neighborhood" help:"Sampling pattern."`
}

func (c *SampleCmd) Run(rc *runContext) error {
	cfg, err := rc.loadConfig()
	if err != nil {
		return err
	}

	ckpt, err := persistence.Load(c.Checkpoint)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	reporter := pipeline.NewReporter(rc.logger, rc.tracer, nil)
	builder := pipeline.New(cfg, buildEmbedder(cfg.Embedding), buildChat(cfg.LLM), reporter)

	s := sampler.New(ckpt.Graph)
	batchCfg := sampler.DefaultBatchConfig()
	batchCfg.Count = c.Count
	if c.Mode == "chain" {
		batchCfg.Mode = sampler.ModeChain
	} else {
		batchCfg.Mode = sampler.ModeNeighborhood
	}

	result, err := builder.SampleAndSynthesize(context.Background(), ckpt.Graph, s, batchCfg)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}

	data, err := persistence.ExportIntentsJSON(result.Intents)
	if err != nil {
		return fmt.Errorf("export intents: %w", err)
	}
	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	rc.logger.Info("sampling complete",
		"skeletons", len(result.Report.Skeletons),
		"intents", len(result.Intents),
		"exhausted", result.Report.Exhausted,
		"coverage", result.Report.Coverage,
	)
	return nil
}

// ExportCmd exports a checkpointed graph to a portable format.
type ExportCmd struct {
	Checkpoint string `required:"" help:"Path to a graph checkpoint." type:"path"`
	Out        string `required:"" help:"Output file path." type:"path"`
	Format     string `default:"json" enum:"json,graphml" help:"Export format."`
}

func (c *ExportCmd) Run(rc *runContext) error {
	ckpt, err := persistence.Load(c.Checkpoint)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	var data []byte
	switch c.Format {
	case "graphml":
		data, err = persistence.ExportGraphML(ckpt.Graph)
	default:
		data, err = persistence.ExportGraphJSON(ckpt.Graph)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	rc.logger.Info("graph exported", "format", c.Format, "path", c.Out)
	return nil
}

// ServeCmd serves the operational HTTP surface over a fresh sampler
// built from a checkpointed graph. The command runs no sampling itself,
// so /v1/coverage reports a sampler that has visited no edges.
type ServeCmd struct {
	Checkpoint string `required:"" help:"Path to a graph checkpoint." type:"path"`
	Addr       string `default:":8080" help:"Listen address."`
}

func (c *ServeCmd) Run(rc *runContext) error {
	ckpt, err := persistence.Load(c.Checkpoint)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	s := sampler.New(ckpt.Graph)
	router := httpapi.NewRouter(s, nil)

	rc.logger.Info("serving", "addr", c.Addr)
	if err := http.ListenAndServe(c.Addr, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
