package intent

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sloopgen/sloop/pkg/graph"
	"github.com/sloopgen/sloop/pkg/llmclient"
	"github.com/sloopgen/sloop/pkg/sampler"
)

func buildGraph() *graph.Graph {
	g := graph.New()
	g.AddNode(graph.Node{Name: "geocode_city", Description: "resolves a city to coordinates"})
	g.AddNode(graph.Node{Name: "search_flights", Description: "finds flights"})
	_ = g.AddEdge(graph.Edge{Producer: "geocode_city", Consumer: "search_flights", Parameter: "origin", Weight: 0.9})
	return g
}

func sampleSkeleton() sampler.TaskSkeleton {
	return sampler.TaskSkeleton{
		Pattern: sampler.PatternChain,
		Nodes: []sampler.SkeletonNode{
			{Name: "geocode_city", Role: sampler.RoleCore},
			{Name: "search_flights", Role: sampler.RoleCore},
		},
		Edges: []sampler.SkeletonEdge{
			{Step: 1, From: "geocode_city", To: "search_flights", Dependency: sampler.Dependency{Parameter: "origin"}},
		},
	}
}

func TestSynthesize_ValidResponseAccepted(t *testing.T) {
	g := buildGraph()
	skel := sampleSkeleton()

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return `{"scenario_summary":"book a flight","initial_state":{"city":"Paris"},"final_state":{"booked":true},"query":"Find me a flight from Paris"}`, nil
	})

	got, err := Synthesize(context.Background(), nil, chat, g, skel)
	require.NoError(t, err)
	require.Equal(t, "Find me a flight from Paris", got.Query)
	require.Equal(t, "skel_"+md5Hex(skel.EdgesSignature()), got.Meta.SkeletonID)
}

func TestSynthesize_RejectsUngroundedInitialState(t *testing.T) {
	g := buildGraph()
	skel := sampleSkeleton()

	attempts := 0
	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		attempts++
		return `{"scenario_summary":"s","initial_state":{"city":"Berlin"},"final_state":{},"query":"Find me a flight from Paris"}`, nil
	})

	_, err := Synthesize(context.Background(), nil, chat, g, skel)
	require.Error(t, err)
	require.Equal(t, MaxRetries, attempts)
}

func TestSynthesize_RejectsIntermediateParameterLeakage(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{Name: "a"})
	g.AddNode(graph.Node{Name: "b"})
	g.AddNode(graph.Node{Name: "c"})
	_ = g.AddEdge(graph.Edge{Producer: "a", Consumer: "b", Parameter: "first", Weight: 0.9})
	_ = g.AddEdge(graph.Edge{Producer: "b", Consumer: "c", Parameter: "second", Weight: 0.9})

	skel := sampler.TaskSkeleton{
		Pattern: sampler.PatternChain,
		Nodes:   []sampler.SkeletonNode{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Edges: []sampler.SkeletonEdge{
			{Step: 1, From: "a", To: "b", Dependency: sampler.Dependency{Parameter: "first"}},
			{Step: 2, From: "b", To: "c", Dependency: sampler.Dependency{Parameter: "second"}},
		},
	}

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return `{"scenario_summary":"s","initial_state":{"second":"leak value"},"final_state":{},"query":"leak value"}`, nil
	})

	_, err := Synthesize(context.Background(), nil, chat, g, skel)
	require.Error(t, err)
}

func TestSynthesize_RetriesOnUnparseableResponse(t *testing.T) {
	g := buildGraph()
	skel := sampleSkeleton()

	attempts := 0
	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		attempts++
		if attempts < 2 {
			return "not json", nil
		}
		return `{"scenario_summary":"s","initial_state":{"city":"Paris"},"final_state":{},"query":"Flight from Paris"}`, nil
	})

	got, err := Synthesize(context.Background(), nil, chat, g, skel)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 2, attempts)
}

func TestSynthesize_ExhaustsRetriesOnPersistentFailure(t *testing.T) {
	g := buildGraph()
	skel := sampleSkeleton()

	chat := llmclient.ChatFunc(func(ctx context.Context, system, user string, schema map[string]any) (string, error) {
		return "", errors.New("backend down")
	})

	_, err := Synthesize(context.Background(), nil, chat, g, skel)
	require.Error(t, err)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
