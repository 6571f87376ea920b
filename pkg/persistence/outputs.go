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

package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/sloopgen/sloop/pkg/intent"
	"github.com/sloopgen/sloop/pkg/sampler"
)

// ExportSkeletonsJSON writes skeletons as a JSON array. SkeletonEdge's
// From/To fields already carry "from"/"to" json tags, satisfying the
// external interface's key-aliasing requirement (spec §6) without a
// separate wire type.
func ExportSkeletonsJSON(skeletons []sampler.TaskSkeleton) ([]byte, error) {
	out, err := json.MarshalIndent(skeletons, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persistence: marshal skeletons: %w", err)
	}
	return out, nil
}

// ExportIntentsJSON writes intents as a plain JSON array; UserIntent
// requires no rekeying (spec §6).
func ExportIntentsJSON(intents []*intent.UserIntent) ([]byte, error) {
	out, err := json.MarshalIndent(intents, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persistence: marshal intents: %w", err)
	}
	return out, nil
}
