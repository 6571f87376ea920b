package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraph_AddEdge_RejectsSelfLoop(t *testing.T) {
	g := New()
	g.AddNode(Node{Name: "a"})

	err := g.AddEdge(Edge{Producer: "a", Consumer: "a", Parameter: "x", Weight: 0.9})
	require.Error(t, err)
	require.Equal(t, 0, g.EdgeCount())
}

func TestGraph_AddEdge_RejectsUnknownEndpoints(t *testing.T) {
	g := New()
	g.AddNode(Node{Name: "a"})

	err := g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "x", Weight: 0.9})
	require.Error(t, err)
}

func TestGraph_AddEdge_HighestWeightWinsOnCollision(t *testing.T) {
	g := New()
	g.AddNode(Node{Name: "a"})
	g.AddNode(Node{Name: "b"})

	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "x", Weight: 0.5}))
	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "x", Weight: 0.9}))
	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "x", Weight: 0.3}))

	e, ok := g.Edge(EdgeKey{Producer: "a", Consumer: "b", Parameter: "x"})
	require.True(t, ok)
	require.InDelta(t, 0.9, e.Weight, 1e-6)
	require.Equal(t, 1, g.EdgeCount())
}

func TestGraph_ParallelEdgesOnSamePair(t *testing.T) {
	g := New()
	g.AddNode(Node{Name: "a"})
	g.AddNode(Node{Name: "b"})

	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "x", Weight: 0.7}))
	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "y", Weight: 0.8}))

	require.Equal(t, 2, g.EdgeCount())
	require.Len(t, g.OutEdges("a"), 2)
}

func TestGraph_RemoveNode_RemovesIncidentEdges(t *testing.T) {
	g := New()
	g.AddNode(Node{Name: "a"})
	g.AddNode(Node{Name: "b"})
	g.AddNode(Node{Name: "c"})
	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "x", Weight: 0.7}))
	require.NoError(t, g.AddEdge(Edge{Producer: "b", Consumer: "c", Parameter: "y", Weight: 0.7}))

	g.RemoveNode("b")

	require.False(t, g.HasNode("b"))
	require.Equal(t, 0, g.EdgeCount())
	require.Empty(t, g.OutEdges("a"))
	require.Empty(t, g.InEdges("c"))
}

func TestWeaklyConnectedComponents(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		g.AddNode(Node{Name: name})
	}
	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "p", Weight: 0.7}))
	require.NoError(t, g.AddEdge(Edge{Producer: "b", Consumer: "c", Parameter: "p", Weight: 0.7}))
	// d, e isolated relative to {a,b,c}; d->e forms its own component.
	require.NoError(t, g.AddEdge(Edge{Producer: "d", Consumer: "e", Parameter: "p", Weight: 0.7}))

	components := g.WeaklyConnectedComponents()
	require.Len(t, components, 2)

	sizes := map[int]int{}
	for _, c := range components {
		sizes[len(c)]++
	}
	require.Equal(t, 1, sizes[3])
	require.Equal(t, 1, sizes[2])
}

func TestPruneSmallComponents_RemovesIsolatedNodes(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "isolated"} {
		g.AddNode(Node{Name: name})
	}
	require.NoError(t, g.AddEdge(Edge{Producer: "a", Consumer: "b", Parameter: "p", Weight: 0.7}))

	g.PruneSmallComponents(MinComponentSize)

	require.True(t, g.HasNode("a"))
	require.True(t, g.HasNode("b"))
	require.False(t, g.HasNode("isolated"))
}
