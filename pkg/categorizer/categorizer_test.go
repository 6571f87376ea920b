package categorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sloopgen/sloop/pkg/corpus"
	"github.com/sloopgen/sloop/pkg/llmclient"
)

func TestRun_AssignsCategoryFromResponse(t *testing.T) {
	tools := []*corpus.Tool{
		{Name: "search_flights", Description: "finds flights", Category: corpus.DefaultCategory},
	}

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return `{"category": "travel"}`, nil
	})

	err := Run(context.Background(), nil, chat, tools, nil, 4)
	require.NoError(t, err)
	require.Equal(t, "Travel", tools[0].Category)
}

func TestRun_SkipsAlreadyCategorizedTools(t *testing.T) {
	tools := []*corpus.Tool{
		{Name: "search_flights", Description: "finds flights", Category: "Travel"},
	}

	called := false
	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		called = true
		return `{"category": "whatever"}`, nil
	})

	err := Run(context.Background(), nil, chat, tools, nil, 4)
	require.NoError(t, err)
	require.False(t, called)
	require.Equal(t, "Travel", tools[0].Category)
}

func TestRun_FailedChatLeavesDefaultCategory(t *testing.T) {
	tools := []*corpus.Tool{
		{Name: "search_flights", Description: "finds flights", Category: corpus.DefaultCategory},
	}

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return "", errors.New("backend down")
	})

	err := Run(context.Background(), nil, chat, tools, nil, 4)
	require.NoError(t, err)
	require.Equal(t, corpus.DefaultCategory, tools[0].Category)
}

func TestRun_UnparseableResponseLeavesDefaultCategory(t *testing.T) {
	tools := []*corpus.Tool{
		{Name: "search_flights", Description: "finds flights", Category: corpus.DefaultCategory},
	}

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return "not json at all", nil
	})

	err := Run(context.Background(), nil, chat, tools, nil, 4)
	require.NoError(t, err)
	require.Equal(t, corpus.DefaultCategory, tools[0].Category)
}

func TestRun_NewCategoryIsAddedToPool(t *testing.T) {
	tools := []*corpus.Tool{
		{Name: "search_flights", Description: "finds flights", Category: corpus.DefaultCategory},
	}

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return `{"category": "aviation logistics"}`, nil
	})

	pool := NewPool()
	err := Run(context.Background(), nil, chat, tools, pool, 4)
	require.NoError(t, err)

	found := false
	for _, name := range pool.Snapshot() {
		if name == "Aviation Logistics" {
			found = true
		}
	}
	require.True(t, found)
}

func TestPool_SeededWithDefaults(t *testing.T) {
	pool := NewPool()
	snapshot := pool.Snapshot()
	require.Contains(t, snapshot, "Sports")
	require.Contains(t, snapshot, "Finance")
}
