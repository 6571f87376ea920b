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

// Package persistence reads and writes the checkpoint artifact that
// bundles the tool registry, embedding tables, and dependency graph
// (C9), plus the JSON/GraphML export formats consumed by downstream
// tooling.
package persistence

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sloopgen/sloop/pkg/corpus"
	"github.com/sloopgen/sloop/pkg/embedcache"
	"github.com/sloopgen/sloop/pkg/graph"
)

func init() {
	// corpus.ParameterProperty.Items is populated from arbitrary decoded
	// JSON (see pkg/corpus/reader.go), so its dynamic type varies per
	// tool. gob requires every concrete type that will flow through an
	// interface{} field to be registered up front.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// CheckpointVersion is bumped whenever the on-disk bundle shape changes
// in a forward-incompatible way. A mismatch on reload is a
// CheckpointCorrupted failure rather than a silent partial load.
const CheckpointVersion = 1

// ErrCheckpointCorrupted is returned when a checkpoint fails its
// version check or fails to decode.
var ErrCheckpointCorrupted = errors.New("persistence: checkpoint corrupted")

// ErrCheckpointNotFound signals the "not loaded" case: callers rebuild.
var ErrCheckpointNotFound = errors.New("persistence: checkpoint not found")

// checkpointBundle is the gob-encoded envelope. Version is checked
// before any of the payload is trusted.
type checkpointBundle struct {
	Version    int
	Tools      []*corpus.Tool
	Embeddings embedcache.Snapshot
	Nodes      []graph.Node
	Edges      []graph.Edge
}

// Checkpoint is the rehydrated bundle after a successful Load.
type Checkpoint struct {
	Tools      []*corpus.Tool
	Embeddings *embedcache.Cache
	Graph      *graph.Graph
}

// Save atomically writes the checkpoint to path via write-to-temporary-
// then-rename in the same directory, so a crash mid-write never leaves
// a half-written file at path.
func Save(path string, tools []*corpus.Tool, embeddings *embedcache.Cache, g *graph.Graph) error {
	bundle := checkpointBundle{
		Version:    CheckpointVersion,
		Tools:      tools,
		Embeddings: embeddings.ToSnapshot(),
		Nodes:      g.Nodes(),
		Edges:      g.Edges(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(bundle); err != nil {
		return fmt.Errorf("persistence: encode checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("persistence: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("persistence: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistence: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("persistence: rename temp file into place: %w", err)
	}
	return nil
}

// Load reads and rehydrates a checkpoint written by Save.
func Load(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("persistence: read checkpoint: %w", err)
	}

	var bundle checkpointBundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: decode failed: %v", ErrCheckpointCorrupted, err)
	}
	if bundle.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrCheckpointCorrupted, bundle.Version, CheckpointVersion)
	}

	g := graph.New()
	for _, n := range bundle.Nodes {
		g.AddNode(n)
	}
	for _, e := range bundle.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("%w: edge rehydration failed: %v", ErrCheckpointCorrupted, err)
		}
	}

	return &Checkpoint{
		Tools:      bundle.Tools,
		Embeddings: embedcache.FromSnapshot(bundle.Embeddings),
		Graph:      g,
	}, nil
}
