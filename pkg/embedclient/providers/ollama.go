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

// Package providers holds concrete embedclient.Embedder
// implementations; the llmclient.Chat implementations live in
// pkg/llmclient/providers. None of this is exercised by the
// core's tested invariants (spec.md §1 treats the backends as pinned
// external interfaces) but the repo wires real HTTP clients so the
// factory is runnable end to end.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// OllamaEmbedder calls Ollama's /api/embeddings endpoint once per text.
// Ollama's embedding runner historically cannot handle concurrent
// requests without crashing, so calls are serialized behind a mutex —
// the embedding cache's own batching (pkg/embedcache) is what gives
// throughput, not provider-level concurrency.
type OllamaEmbedder struct {
	Host       string
	Model      string
	Timeout    time.Duration
	MaxRetries int

	client *http.Client
	mu     sync.Mutex
}

// NewOllamaEmbedder constructs an OllamaEmbedder with sane defaults.
func NewOllamaEmbedder(host, model string) *OllamaEmbedder {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEmbedder{
		Host:       host,
		Model:      model,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed satisfies embedclient.Embedder. Ollama has no native batch
// endpoint, so texts are embedded one at a time under the shared lock.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("ollama embed: text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *OllamaEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.Model, Prompt: text})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < e.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Host+"/api/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		result, err := decodeOllamaResponse(resp)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("exhausted retries: %w", lastErr)
}

func decodeOllamaResponse(resp *http.Response) ([]float32, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(b))
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}
	return parsed.Embedding, nil
}
