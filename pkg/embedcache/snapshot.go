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

package embedcache

// Snapshot is the gob-friendly encoding of a Cache's two tables.
// pkg/persistence embeds this directly in the checkpoint bundle;
// ParamKey is a plain comparable struct so it serializes as a map key
// without a custom codec.
type Snapshot struct {
	DescVec  map[string][]float32
	ParamVec map[ParamKey][]float32
}

// ToSnapshot captures the current table contents for checkpointing.
func (c *Cache) ToSnapshot() Snapshot {
	return Snapshot{
		DescVec:  c.descVec,
		ParamVec: c.paramVec,
	}
}

// FromSnapshot rehydrates a Cache from a previously checkpointed
// snapshot. BatchSize is not restored since it only matters during
// Build, which does not run again for a loaded cache.
func FromSnapshot(snap Snapshot) *Cache {
	c := New(nil, 0)
	if snap.DescVec != nil {
		c.descVec = snap.DescVec
	}
	if snap.ParamVec != nil {
		c.paramVec = snap.ParamVec
	}
	return c
}
