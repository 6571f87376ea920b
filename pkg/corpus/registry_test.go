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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_DedupFirstOccurrenceWins(t *testing.T) {
	input := `{"name":"dup","description":"first"}` + "\n" +
		`{"name":"dup","description":"second"}`

	reg := NewRegistry(nil)
	require.NoError(t, reg.Load(strings.NewReader(input)))
	require.Equal(t, 1, reg.Count())

	tool, ok := reg.Get("dup")
	require.True(t, ok)
	require.Equal(t, "first", tool.Description)
}

func TestRegistry_SetCategoryOverwritesOnce(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Load(strings.NewReader(`{"name":"t","description":"d"}`)))

	tool, _ := reg.Get("t")
	require.Equal(t, DefaultCategory, tool.Category)

	reg.SetCategory("t", "Finance")
	tool, _ = reg.Get("t")
	require.Equal(t, "Finance", tool.Category)
}

func TestRegistry_PromptableExcludesEmptyDescription(t *testing.T) {
	input := `{"name":"with_desc","description":"has one"}` + "\n" +
		`{"name":"no_desc","description":""}`

	reg := NewRegistry(nil)
	require.NoError(t, reg.Load(strings.NewReader(input)))

	promptable := reg.Promptable()
	require.Len(t, promptable, 1)
	require.Equal(t, "with_desc", promptable[0].Name)
}

func TestRegistry_ListIsSortedByName(t *testing.T) {
	input := `{"name":"zebra","description":"z"}` + "\n" +
		`{"name":"alpha","description":"a"}`

	reg := NewRegistry(nil)
	require.NoError(t, reg.Load(strings.NewReader(input)))

	list := reg.List()
	require.Len(t, list, 2)
	require.Equal(t, "alpha", list[0].Name)
	require.Equal(t, "zebra", list[1].Name)
}
