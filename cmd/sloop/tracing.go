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

package main

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// newTracerProvider builds a stdout-exporting TracerProvider for local
// runs. w is the exporter's sink; pass nil to discard spans (useful
// when -log-level doesn't warrant the noise but the Reporter's span
// calls should still be exercised rather than stubbed out).
func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	if w == nil {
		w = io.Discard
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

// newRunID stamps a run ID for log correlation across one build or
// sample invocation (spec §6's domain-stack note on google/uuid: not
// part of any dedup key, purely for tying log lines together).
func newRunID() string {
	return uuid.NewString()
}

func shutdownTracerProvider(ctx context.Context, tp *sdktrace.TracerProvider) {
	_ = tp.Shutdown(ctx)
}

var _ trace.TracerProvider = (*sdktrace.TracerProvider)(nil)
