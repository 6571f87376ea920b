package persistence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sloopgen/sloop/pkg/intent"
	"github.com/sloopgen/sloop/pkg/sampler"
)

func TestExportSkeletonsJSON_UsesFromToKeys(t *testing.T) {
	skeletons := []sampler.TaskSkeleton{
		{
			Pattern: sampler.PatternChain,
			Nodes:   []sampler.SkeletonNode{{Name: "a"}, {Name: "b"}},
			Edges: []sampler.SkeletonEdge{
				{Step: 1, From: "a", To: "b", Dependency: sampler.Dependency{Parameter: "x", Relation: "provides_parameter"}},
			},
		},
	}

	data, err := ExportSkeletonsJSON(skeletons)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	edges := decoded[0]["edges"].([]any)
	edge := edges[0].(map[string]any)
	require.Equal(t, "a", edge["from"])
	require.Equal(t, "b", edge["to"])
	_, hasFromTool := edge["from_tool"]
	require.False(t, hasFromTool)
}

func TestExportIntentsJSON_NoRekeying(t *testing.T) {
	intents := []*intent.UserIntent{
		{Query: "q", InitialState: map[string]any{"k": "v"}, FinalState: map[string]any{}, AvailableTools: []string{"a"}},
	}

	data, err := ExportIntentsJSON(intents)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "q", decoded[0]["query"])
}
