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

package corpus

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/sloopgen/sloop/pkg/registry"
)

// Registry holds every Tool parsed from the corpus, keyed by name.
// The Registry exclusively owns Tool records; every other pipeline
// component holds read-only references (spec.md §3 "Ownership").
type Registry struct {
	base   *registry.BaseRegistry[*Tool]
	logger *slog.Logger
}

// NewRegistry constructs an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		base:   registry.NewBaseRegistry[*Tool](),
		logger: logger,
	}
}

// Load reads r and populates the registry. Duplicate names (by the NDJSON
// parse order) are deduplicated first-occurrence-wins; later duplicates
// are logged and dropped, not treated as errors.
func (reg *Registry) Load(r io.Reader) error {
	tools, err := Read(r, reg.logger)
	if err != nil {
		return fmt.Errorf("corpus: load failed: %w", err)
	}

	for _, t := range tools {
		if err := reg.base.Register(t.Name, t); err != nil {
			reg.logger.Debug("corpus: dropping duplicate tool", "name", t.Name)
			continue
		}
	}
	return nil
}

// Get returns the tool registered under name, if any.
func (reg *Registry) Get(name string) (*Tool, bool) {
	return reg.base.Get(name)
}

// List returns every registered tool, sorted by name for deterministic
// downstream iteration (embedding batches, proposer matrices).
func (reg *Registry) List() []*Tool {
	tools := reg.base.List()
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Count returns the number of distinct tools loaded.
func (reg *Registry) Count() int {
	return reg.base.Count()
}

// SetCategory overwrites the named tool's category; an unknown name is a
// no-op. It does not check whether the category was already overwritten,
// and it does not synchronize with concurrent readers of the Tool. The
// categorizer (C3) assigns Tool.Category directly and does not call it.
func (reg *Registry) SetCategory(name, category string) {
	tool, ok := reg.base.Get(name)
	if !ok {
		return
	}
	tool.Category = category
}

// Promptable returns tools with a non-empty description, the subset
// eligible for intent prompting (C8) per spec.md §4.1.
func (reg *Registry) Promptable() []*Tool {
	var out []*Tool
	for _, t := range reg.List() {
		if t.HasDescription() {
			out = append(out, t)
		}
	}
	return out
}
