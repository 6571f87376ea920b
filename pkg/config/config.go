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

// Package config holds the pipeline's typed configuration surface
// (spec §6) and the machinery to decode it from a YAML file or a plain
// environment-like map, with optional hot reload.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EmbeddingConfig carries connection parameters for the Embed backend.
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Host     string `mapstructure:"host" yaml:"host"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Model    string `mapstructure:"model" yaml:"model"`
}

// LLMConfig carries connection parameters for the Chat backend.
type LLMConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Host     string `mapstructure:"host" yaml:"host"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Model    string `mapstructure:"model" yaml:"model"`
}

// Config is the pipeline's full configuration surface, as enumerated
// by spec §6's table.
type Config struct {
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`

	RecallThreshold     float32 `mapstructure:"recall_threshold" yaml:"recall_threshold"`
	AutoAcceptThreshold float32 `mapstructure:"auto_accept_threshold" yaml:"auto_accept_threshold"`
	TopK                int     `mapstructure:"top_k" yaml:"top_k"`
	EnableLLMVerify     bool    `mapstructure:"enable_llm_verify" yaml:"enable_llm_verify"`
	PruneIsolates       bool    `mapstructure:"prune_isolates" yaml:"prune_isolates"`
	MaxWorkers          int     `mapstructure:"max_workers" yaml:"max_workers"`
	EmbeddingBatchSize  int     `mapstructure:"embedding_batch_size" yaml:"embedding_batch_size"`
}

// Default returns the configuration spec §6 documents as defaults.
func Default() Config {
	return Config{
		RecallThreshold:     0.68,
		AutoAcceptThreshold: 0.88,
		TopK:                5,
		EnableLLMVerify:     true,
		PruneIsolates:       true,
		MaxWorkers:          50,
		EmbeddingBatchSize:  64,
	}
}

// DecodeMap decodes a plain environment-like map (string keys, mixed
// value types) into Config over the documented defaults, via
// mapstructure so callers can hand it os.Environ()-derived data or
// a parsed .env without writing a bespoke decoder.
func DecodeMap(raw map[string]any) (Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Config{}, fmt.Errorf("config: build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// DecodeYAML decodes a YAML document into Config over the documented
// defaults.
func DecodeYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}
