package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sloopgen/sloop/pkg/graph"
)

// chainGraph builds a -> b -> c -> d -> e, a simple path long enough to
// exercise sequential walks of length up to 5.
func chainGraph() *graph.Graph {
	g := graph.New()
	names := []string{"a", "b", "c", "d", "e"}
	for _, n := range names {
		g.AddNode(graph.Node{Name: n, Description: "desc " + n, Category: "general"})
	}
	for i := 0; i < len(names)-1; i++ {
		_ = g.AddEdge(graph.Edge{Producer: names[i], Consumer: names[i+1], Parameter: "p", Weight: 0.8})
	}
	return g
}

func TestGenerateBatch_Chain_ProducesValidSkeletons(t *testing.T) {
	g := chainGraph()
	s := New(g)

	report := s.GenerateBatch(BatchConfig{Mode: ModeChain, Count: 1, MinLen: 3, MaxLen: 4, MaxRetries: 50})
	require.Len(t, report.Skeletons, 1)

	skel := report.Skeletons[0]
	require.Equal(t, PatternChain, skel.Pattern)
	require.GreaterOrEqual(t, len(skel.Nodes), 3)
	for i, e := range skel.Edges {
		require.Equal(t, i+1, e.Step)
	}
	for _, n := range skel.Nodes {
		require.Equal(t, RoleCore, n.Role)
	}
}

func TestGenerateBatch_DeduplicatesBySignature(t *testing.T) {
	g := chainGraph()
	s := New(g)

	report := s.GenerateBatch(BatchConfig{Mode: ModeChain, Count: 3, MinLen: 2, MaxLen: 2, MaxRetries: 200})

	seen := make(map[string]bool)
	for _, skel := range report.Skeletons {
		sig := skel.EdgesSignature()
		require.False(t, seen[sig], "duplicate skeleton signature emitted")
		seen[sig] = true
	}
}

func TestGenerateBatch_ExhaustsWhenGraphTooSmall(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{Name: "a"})
	g.AddNode(graph.Node{Name: "b"})
	_ = g.AddEdge(graph.Edge{Producer: "a", Consumer: "b", Parameter: "p", Weight: 0.8})

	s := New(g)
	report := s.GenerateBatch(BatchConfig{Mode: ModeChain, Count: 100, MinLen: 2, MaxLen: 2, MaxRetries: 5})

	require.True(t, report.Exhausted)
	require.LessOrEqual(t, len(report.Skeletons), 1)
}

func TestGenerateBatch_Neighborhood_MarksDistractors(t *testing.T) {
	g := chainGraph()
	g.AddNode(graph.Node{Name: "noise1"})
	g.AddNode(graph.Node{Name: "noise2"})
	_ = g.AddEdge(graph.Edge{Producer: "b", Consumer: "noise1", Parameter: "q", Weight: 0.7})

	s := New(g)
	report := s.GenerateBatch(BatchConfig{Mode: ModeNeighborhood, Count: 1, MinLen: 2, MaxLen: 3, ExpansionRatio: 0.5, MaxRetries: 50})
	require.Len(t, report.Skeletons, 1)

	skel := report.Skeletons[0]
	require.Equal(t, PatternNeighborhood, skel.Pattern)
	require.NotNil(t, skel.Meta)

	distractorNames := make(map[string]bool)
	for _, n := range skel.Nodes {
		if n.Role == RoleDistractor {
			distractorNames[n.Name] = true
		}
	}
	for _, name := range skel.Meta.DistractorNodes {
		require.True(t, distractorNames[name])
	}

	// Edges only reference core nodes.
	coreSet := make(map[string]bool)
	for _, n := range skel.Meta.CoreChainNodes {
		coreSet[n] = true
	}
	for _, e := range skel.Edges {
		require.True(t, coreSet[e.From])
		require.True(t, coreSet[e.To])
	}
}

func TestCoverage_ZeroBeforeSampling(t *testing.T) {
	g := chainGraph()
	s := New(g)
	require.Equal(t, 0.0, s.Coverage())
}

func TestCoverage_IncreasesAfterSampling(t *testing.T) {
	g := chainGraph()
	s := New(g)
	s.GenerateBatch(BatchConfig{Mode: ModeChain, Count: 1, MinLen: 2, MaxLen: 4, MaxRetries: 50})
	require.Greater(t, s.Coverage(), 0.0)
}

func TestResetCoverage_ClearsCounters(t *testing.T) {
	g := chainGraph()
	s := New(g)
	s.GenerateBatch(BatchConfig{Mode: ModeChain, Count: 1, MinLen: 2, MaxLen: 4, MaxRetries: 50})
	require.Greater(t, s.Coverage(), 0.0)

	s.ResetCoverage()
	require.Equal(t, 0.0, s.Coverage())
}

func TestEdgesSignature_OrderIndependent(t *testing.T) {
	a := TaskSkeleton{Edges: []SkeletonEdge{{From: "x", To: "y"}, {From: "a", To: "b"}}}
	b := TaskSkeleton{Edges: []SkeletonEdge{{From: "a", To: "b"}, {From: "x", To: "y"}}}
	require.Equal(t, a.EdgesSignature(), b.EdgesSignature())
}
