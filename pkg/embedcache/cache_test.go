package embedcache

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sloopgen/sloop/pkg/corpus"
	"github.com/sloopgen/sloop/pkg/embedclient"
)

func toolWithParams(name string, params ...string) *corpus.Tool {
	schema := corpus.ParameterSchema{
		Names:      params,
		Properties: make(map[string]corpus.ParameterProperty),
	}
	for _, p := range params {
		schema.Properties[p] = corpus.ParameterProperty{Description: "desc of " + p}
	}
	return &corpus.Tool{Name: name, Description: "does something", Parameters: schema}
}

func constantEmbedder(dim int) embedclient.EmbedFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			vec := make([]float32, dim)
			vec[0] = float32(i + 1)
			out[i] = vec
		}
		return out, nil
	}
}

func TestCache_Build_PopulatesBothTables(t *testing.T) {
	tools := []*corpus.Tool{
		toolWithParams("search_flights", "origin", "destination"),
		toolWithParams("book_hotel", "city"),
	}

	c := New(nil, 64)
	err := c.Build(context.Background(), constantEmbedder(4), tools)
	require.NoError(t, err)

	_, ok := c.DescVector("search_flights")
	require.True(t, ok)
	_, ok = c.DescVector("book_hotel")
	require.True(t, ok)

	_, ok = c.ParamVector("search_flights", "origin")
	require.True(t, ok)
	_, ok = c.ParamVector("search_flights", "destination")
	require.True(t, ok)
	_, ok = c.ParamVector("book_hotel", "city")
	require.True(t, ok)
}

func TestCache_Build_VectorsAreL2Normalized(t *testing.T) {
	tools := []*corpus.Tool{toolWithParams("search_flights")}

	c := New(nil, 64)
	err := c.Build(context.Background(), constantEmbedder(3), tools)
	require.NoError(t, err)

	vec, ok := c.DescVector("search_flights")
	require.True(t, ok)

	var sumSq float64
	for _, x := range vec {
		sumSq += float64(x) * float64(x)
	}
	require.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-6)
}

func TestCache_Build_BatchesRespectSize(t *testing.T) {
	var gotSizes []int
	embedder := embedclient.EmbedFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		gotSizes = append(gotSizes, len(texts))
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0}
		}
		return out, nil
	})

	tools := make([]*corpus.Tool, 0, 5)
	for i := 0; i < 5; i++ {
		tools = append(tools, toolWithParams("tool"+string(rune('a'+i))))
	}

	c := New(nil, 2)
	err := c.Build(context.Background(), embedder, tools)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 1}, gotSizes)
}

func TestCache_Build_PartialBatchFailureIsTolerated(t *testing.T) {
	calls := 0
	embedder := embedclient.EmbedFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("backend unavailable")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0}
		}
		return out, nil
	})

	tools := make([]*corpus.Tool, 0, 3)
	for i := 0; i < 3; i++ {
		tools = append(tools, toolWithParams("tool"+string(rune('a'+i))))
	}

	c := New(nil, 1)
	err := c.Build(context.Background(), embedder, tools)
	require.NoError(t, err)

	_, ok := c.DescVector("toola")
	require.False(t, ok, "first batch failed, should have no vector")
	_, ok = c.DescVector("toolb")
	require.True(t, ok)
	_, ok = c.DescVector("toolc")
	require.True(t, ok)
}

func TestCache_Build_AllBatchesFailingIsError(t *testing.T) {
	embedder := embedclient.EmbedFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("backend unavailable")
	})

	tools := []*corpus.Tool{toolWithParams("search_flights")}

	c := New(nil, 64)
	err := c.Build(context.Background(), embedder, tools)
	require.Error(t, err)
}

func TestCache_SnapshotRoundTrip(t *testing.T) {
	tools := []*corpus.Tool{toolWithParams("search_flights", "origin")}

	c := New(nil, 64)
	require.NoError(t, c.Build(context.Background(), constantEmbedder(2), tools))

	snap := c.ToSnapshot()
	restored := FromSnapshot(snap)

	got, ok := restored.DescVector("search_flights")
	require.True(t, ok)
	want, _ := c.DescVector("search_flights")
	require.Equal(t, want, got)

	_, ok = restored.ParamVector("search_flights", "origin")
	require.True(t, ok)
}
