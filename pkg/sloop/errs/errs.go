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

// Package errs holds the pipeline's error taxonomy (spec §7): a small
// set of sentinel kinds, each wrapped in a typed error carrying enough
// context to log without a second round trip through the source.
package errs

import "fmt"

// Kind identifies which branch of the taxonomy an error belongs to.
type Kind string

const (
	// MalformedInput marks a fatal top-level parse failure of the tool corpus.
	MalformedInput Kind = "malformed_input"
	// ServiceUnavailable marks an embedding/chat backend unreachable after retries.
	ServiceUnavailable Kind = "service_unavailable"
	// ModelOutputInvalid marks unparseable LLM output after retries.
	ModelOutputInvalid Kind = "model_output_invalid"
	// CheckpointCorrupted marks a hash/version mismatch on checkpoint reload.
	CheckpointCorrupted Kind = "checkpoint_corrupted"
)

// Error is the pipeline's tagged error type. Callers discriminate on
// Kind via errors.As, the way the teacher's *XxxError types expose a
// typed field rather than string-matching.
type Error struct {
	Kind      Kind
	Component string
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Component, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, errs.MalformedInput) work directly against a
// bare Kind value, without constructing a wrapper.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Error satisfies the error interface for a bare Kind so it can be
// used as an errors.Is target.
func (k Kind) Error() string { return string(k) }

// New wraps err under the given Kind, tagged with the component name
// that raised it (e.g. "categorizer", "checkpoint").
func New(kind Kind, component string, err error) *Error {
	return &Error{Kind: kind, Component: component, Err: err}
}
