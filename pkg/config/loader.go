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

package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sloopgen/sloop/pkg/config/provider"
)

// Loader owns a file-backed Provider and the last successfully
// decoded Config, refreshing both when the file changes on disk.
type Loader struct {
	logger   *slog.Logger
	prov     provider.Provider
	current  atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []func(Config)
}

// NewLoader builds a Loader reading from a YAML file at path and
// performs the initial load.
func NewLoader(logger *slog.Logger, path string) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	prov, err := provider.New(logger, provider.ProviderConfig{Type: provider.TypeFile, Path: path})
	if err != nil {
		return nil, fmt.Errorf("config: create provider: %w", err)
	}

	l := &Loader{logger: logger, prov: prov}
	if err := l.reload(context.Background()); err != nil {
		prov.Close()
		return nil, err
	}
	return l, nil
}

// Current returns the most recently loaded Config.
func (l *Loader) Current() Config {
	return *l.current.Load()
}

// OnReload registers a callback invoked (from the watch goroutine)
// every time the backing file changes and decodes successfully.
// Decode failures are logged and the previous Config is kept.
func (l *Loader) OnReload(fn func(Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Watch starts the hot-reload loop. It blocks until ctx is canceled.
func (l *Loader) Watch(ctx context.Context) error {
	ch, err := l.prov.Watch(ctx)
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return l.prov.Close()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if err := l.reload(ctx); err != nil {
				l.logger.Warn("config reload failed, keeping previous config", "error", err)
				continue
			}
			l.notify()
		}
	}
}

func (l *Loader) reload(ctx context.Context) error {
	data, err := l.prov.Load(ctx)
	if err != nil {
		return err
	}
	cfg, err := DecodeYAML(data)
	if err != nil {
		return err
	}
	l.current.Store(&cfg)
	return nil
}

func (l *Loader) notify() {
	l.mu.Lock()
	listeners := append([]func(Config){}, l.listeners...)
	l.mu.Unlock()

	cfg := l.Current()
	for _, fn := range listeners {
		fn(cfg)
	}
}
