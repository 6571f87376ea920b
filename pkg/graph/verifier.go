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

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sloopgen/sloop/pkg/llmclient"
)

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// Verify adjudicates the mid-confidence candidates (those the caller
// has already classified as TierVerify) by asking Chat whether the
// producer's observable output can satisfy the consumer's named
// parameter. Up to workers calls run concurrently; each is a pure
// function of its single candidate, so output order carries no meaning
// (spec §4.5). A candidate whose response fails to parse is rejected,
// never retried.
func Verify(ctx context.Context, logger *slog.Logger, chat llmclient.Chat, candidates []EdgeCandidate, workers int) []EdgeCandidate {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 50
	}

	accepted := make([]bool, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	var mu sync.Mutex
	for i, cand := range candidates {
		i, cand := i, cand
		group.Go(func() error {
			ok := verifyOne(groupCtx, chat, cand)
			mu.Lock()
			accepted[i] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	out := make([]EdgeCandidate, 0, len(candidates))
	for i, cand := range candidates {
		if accepted[i] {
			out = append(out, cand)
		}
	}
	return out
}

func verifyOne(ctx context.Context, chat llmclient.Chat, cand EdgeCandidate) bool {
	system := "You judge whether one API tool's output can logically satisfy another tool's input parameter. Respond with a single JSON object: {\"valid\": true|false}."
	user := fmt.Sprintf(
		"Producer tool: %s\nConsumer tool: %s\nConsumer parameter: %s\nCan the producer's output plausibly satisfy this parameter?",
		cand.Producer, cand.Consumer, cand.Parameter,
	)

	raw, err := chat.Chat(ctx, system, user, map[string]any{
		"type":       "object",
		"properties": map[string]any{"valid": map[string]any{"type": "boolean"}},
		"required":   []string{"valid"},
	})
	if err != nil {
		return false
	}

	var resp verifyResponse
	if err := llmclient.ExtractJSON(raw, &resp); err != nil {
		return false
	}
	return resp.Valid
}
