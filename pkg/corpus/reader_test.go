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

func TestRead_BareFunctionObject(t *testing.T) {
	input := `{"name":"find_user","description":"Finds users and returns user_id","parameters":{"properties":{},"required":[]}}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "find_user", tools[0].Name)
	require.Equal(t, DefaultCategory, tools[0].Category)
}

func TestRead_OpenAIWrapper(t *testing.T) {
	input := `{"type":"function","function":{"name":"get_weather","description":"Gets weather","parameters":{"properties":{"city":{"type":"string","description":"City name"}},"required":["city"]}}}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "get_weather", tools[0].Name)
	require.Contains(t, tools[0].Parameters.Properties, "city")
	require.Equal(t, []string{"city"}, tools[0].Parameters.Required)
}

func TestRead_ToolsFieldAsArray(t *testing.T) {
	input := `{"tools":[{"name":"a","description":"A"},{"type":"function","function":{"name":"b","description":"B"}}]}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	require.Equal(t, "a", tools[0].Name)
	require.Equal(t, "b", tools[1].Name)
}

func TestRead_ToolsFieldAsEncodedString(t *testing.T) {
	input := `{"tools":"[{\"name\":\"c\",\"description\":\"C\"}]"}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "c", tools[0].Name)
}

func TestRead_AcceptsEmptyParameterSchema(t *testing.T) {
	input := `{"name":"noop","description":"Does nothing","parameters":{}}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.True(t, tools[0].Parameters.IsEmpty())
}

func TestRead_AcceptsEmptyDescription(t *testing.T) {
	input := `{"name":"mystery","description":""}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.False(t, tools[0].HasDescription())
}

func TestRead_SkipsUnnamedRecord(t *testing.T) {
	input := "{\"description\":\"no name here\"}\n" +
		`{"name":"valid","description":"ok"}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "valid", tools[0].Name)
}

func TestRead_MalformedTopLevelJSONFails(t *testing.T) {
	input := `{"name": "broken"` // truncated, invalid JSON

	_, err := Read(strings.NewReader(input), nil)
	require.Error(t, err)
	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
}

func TestRead_MultipleLinesSkipBadOnes(t *testing.T) {
	input := `{"function":{"description":"missing name"}}` + "\n" +
		`{"name":"ok1","description":"first"}` + "\n" +
		`{"name":"ok2","description":"second"}`

	tools, err := Read(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, tools, 2)
}
