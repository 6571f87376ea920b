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

// Command sloop builds and samples the tool-dependency graph that
// feeds the synthetic training-data factory.
//
// Usage:
//
//	sloop build-graph --corpus tools.jsonl --checkpoint graph.bin
//	sloop sample --checkpoint graph.bin --out intents.json --count 50
//	sloop export --checkpoint graph.bin --format graphml --out graph.graphml
//	sloop serve --checkpoint graph.bin --addr :8080
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	"github.com/sloopgen/sloop/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	BuildGraph BuildGraphCmd `cmd:"" help:"Parse a tool corpus and build the dependency graph checkpoint."`
	Sample     SampleCmd     `cmd:"" help:"Sample task skeletons and user intents from a checkpointed graph."`
	Export     ExportCmd     `cmd:"" help:"Export a checkpointed graph to a portable format."`
	Serve      ServeCmd      `cmd:"" help:"Serve the operational HTTP surface (/healthz, /metrics, /v1/coverage)."`

	ConfigPath string `short:"c" name:"config" help:"Path to a YAML config file." type:"path" default:"sloop.yaml"`
	LogLevel   string `help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,error"`
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("sloop"),
		kong.Description("Synthetic tool-use training-data factory."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.LogLevel)
	runID := newRunID()
	logger = logger.With("run_id", runID)

	tp, err := newTracerProvider(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize tracer: %v\n", err)
		os.Exit(1)
	}
	defer shutdownTracerProvider(context.Background(), tp)

	rc := &runContext{logger: logger, configPath: cli.ConfigPath, runID: runID, tracer: tp.Tracer("sloop")}

	err = kctx.Run(rc)
	kctx.FatalIfErrorf(err)
}

// runContext is threaded into every command's Run via kong's
// bind-by-type convention, carrying the logger, resolved config path,
// run ID, and tracer so subcommands don't each re-parse global flags
// or stand up their own observability plumbing.
type runContext struct {
	logger     *slog.Logger
	configPath string
	runID      string
	tracer     trace.Tracer
}

func (rc *runContext) loadConfig() (config.Config, error) {
	data, err := os.ReadFile(rc.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	return config.DecodeYAML(data)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
