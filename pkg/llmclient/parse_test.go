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

package llmclient

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON_Plain(t *testing.T) {
	var out struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, ExtractJSON(`{"valid": true}`, &out))
	require.True(t, out.Valid)
}

func TestExtractJSON_MarkdownFenced(t *testing.T) {
	var out struct {
		Valid bool `json:"valid"`
	}
	raw := "```json\n{\"valid\": false}\n```"
	require.NoError(t, ExtractJSON(raw, &out))
	require.False(t, out.Valid)
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	var out struct {
		Valid bool `json:"valid"`
	}
	raw := "Sure, here is the answer:\n{\"valid\": true}\nLet me know if you need more."
	require.NoError(t, ExtractJSON(raw, &out))
	require.True(t, out.Valid)
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	var out struct {
		Nested struct {
			A int `json:"a"`
		} `json:"nested"`
	}
	raw := `{"nested": {"a": 1}}`
	require.NoError(t, ExtractJSON(raw, &out))
	require.Equal(t, 1, out.Nested.A)
}

func TestExtractJSON_NoObjectFails(t *testing.T) {
	var out map[string]any
	err := ExtractJSON("no json here at all", &out)
	require.Error(t, err)
}

func TestExtractJSON_UnterminatedFails(t *testing.T) {
	var out map[string]any
	err := ExtractJSON(`{"a": 1`, &out)
	require.Error(t, err)
}

func TestExtractJSON_BraceInsideString(t *testing.T) {
	var out struct {
		Text string `json:"text"`
	}
	raw := `{"text": "a } b { c"}`
	require.NoError(t, ExtractJSON(raw, &out))
	require.Equal(t, "a } b { c", out.Text)
}
