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

// Package llmclient pins the single external capability the core depends
// on for language-model calls (spec.md §6): Chat(messages, schema) -> text.
// Concrete backends (Anthropic, OpenAI-compatible, ...) live under
// pkg/llmclient/providers and are downstream implementation detail, not
// part of the tested core.
package llmclient

import "context"

// Chat is the narrow capability the core consumes. jsonSchema, when
// non-nil, is a hint to the backend (e.g. passed as a response_format);
// callers MUST still parse the returned text defensively since not every
// backend honors the hint strictly.
type Chat interface {
	Chat(ctx context.Context, system, user string, jsonSchema map[string]any) (string, error)
}

// ChatFunc adapts a plain function to the Chat interface, mirroring the
// http.HandlerFunc idiom used across the example pack for simple seams.
type ChatFunc func(ctx context.Context, system, user string, jsonSchema map[string]any) (string, error)

func (f ChatFunc) Chat(ctx context.Context, system, user string, jsonSchema map[string]any) (string, error) {
	return f(ctx, system, user, jsonSchema)
}
