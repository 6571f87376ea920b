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

// Package providers holds concrete llmclient.Chat implementations.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AnthropicChat implements llmclient.Chat against the Messages API.
type AnthropicChat struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int

	client *http.Client
}

// NewAnthropicChat constructs an AnthropicChat with sane defaults.
func NewAnthropicChat(apiKey, model string) *AnthropicChat {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &AnthropicChat{
		BaseURL:    "https://api.anthropic.com/v1",
		APIKey:     apiKey,
		Model:      model,
		MaxTokens:  1024,
		MaxRetries: 3,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

// Chat satisfies llmclient.Chat. jsonSchema is accepted for interface
// compatibility but the Messages API has no native structured-output
// parameter in the general case, so the schema is folded into the
// system prompt as an instruction; callers still parse defensively via
// llmclient.ExtractJSON.
func (c *AnthropicChat) Chat(ctx context.Context, system, user string, jsonSchema map[string]any) (string, error) {
	if jsonSchema != nil {
		schemaBytes, err := json.Marshal(jsonSchema)
		if err == nil {
			system = system + "\n\nRespond with a single JSON object matching this schema:\n" + string(schemaBytes)
		}
	}

	reqBody, err := json.Marshal(anthropicRequest{
		Model:     c.Model,
		System:    system,
		MaxTokens: c.MaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/messages", bytes.NewReader(reqBody))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		text, err := decodeAnthropicResponse(resp)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("anthropic chat: exhausted retries: %w", lastErr)
}

func decodeAnthropicResponse(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, string(b))
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	var out string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}
