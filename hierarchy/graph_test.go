package hierarchy

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taxonomy used across tests:
//
//	entity
//	├── animal
//	│   ├── dog ── puppy
//	│   └── cat
//	└── vehicle
//	    ├── car
//	    └── truck
//	pet (second root) ── dog, cat
func fixtureEdges() []Edge {
	return []Edge{
		{"entity", "animal"},
		{"entity", "vehicle"},
		{"animal", "dog"},
		{"animal", "cat"},
		{"dog", "puppy"},
		{"vehicle", "car"},
		{"vehicle", "truck"},
		{"pet", "dog"},
		{"pet", "cat"},
	}
}

func mustGraph(t *testing.T, edges []Edge) *Graph {
	t.Helper()
	g, err := NewGraphFromEdges(edges)
	require.NoError(t, err)
	return g
}

func TestGraph_AncestorClosureIsOrderIndependent(t *testing.T) {
	forward := mustGraph(t, []Edge{{"A", "B"}, {"B", "C"}})
	reverse := mustGraph(t, []Edge{{"B", "C"}, {"A", "B"}})

	assert.Equal(t, []ClassID{"A", "B"}, forward.Ancestors("C"))
	assert.Equal(t, []ClassID{"A", "B"}, reverse.Ancestors("C"))
}

func TestGraph_AncestorClosureShuffled(t *testing.T) {
	want := mustGraph(t, fixtureEdges())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		edges := fixtureEdges()
		rng.Shuffle(len(edges), func(a, b int) { edges[a], edges[b] = edges[b], edges[a] })
		g := mustGraph(t, edges)
		for _, c := range want.Classes() {
			require.Equal(t, want.Ancestors(c), g.Ancestors(c), "class %s, order %v", c, edges)
		}
	}
}

func TestGraph_MultiParentClosure(t *testing.T) {
	g := mustGraph(t, fixtureEdges())

	assert.Equal(t, []ClassID{"animal", "entity", "pet"}, g.Ancestors("dog"))
	assert.Equal(t, []ClassID{"animal", "dog", "entity", "pet"}, g.Ancestors("puppy"))
	assert.Equal(t, []ClassID{"animal", "pet"}, g.Parents("dog"))
	assert.Empty(t, g.Ancestors("entity"))
	assert.Empty(t, g.Ancestors("pet"))
}

func TestGraph_UpstreamEdgeReachesDescendants(t *testing.T) {
	g := mustGraph(t, []Edge{{"dog", "puppy"}, {"animal", "dog"}})
	require.NoError(t, g.AddEdge("entity", "animal"))

	assert.Equal(t, []ClassID{"animal", "dog", "entity"}, g.Ancestors("puppy"))
	assert.True(t, g.IsAncestorOf("entity", "puppy"))
}

func TestGraph_AddEdgeIdempotent(t *testing.T) {
	once := mustGraph(t, fixtureEdges())
	twice := mustGraph(t, append(fixtureEdges(), fixtureEdges()...))

	assert.Equal(t, once.Classes(), twice.Classes())
	for _, c := range once.Classes() {
		assert.Equal(t, once.Parents(c), twice.Parents(c))
		assert.Equal(t, once.Children(c), twice.Children(c))
		assert.Equal(t, once.Ancestors(c), twice.Ancestors(c))
	}
}

func TestGraph_RejectsInvalidEdges(t *testing.T) {
	testCases := []struct {
		name   string
		parent ClassID
		child  ClassID
	}{
		{name: "self-loop", parent: "dog", child: "dog"},
		{name: "direct cycle", parent: "dog", child: "animal"},
		{name: "transitive cycle", parent: "puppy", child: "entity"},
		{name: "empty parent", parent: "", child: "dog"},
		{name: "empty child", parent: "dog", child: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := mustGraph(t, fixtureEdges())
			before := g.Ancestors(tc.parent)

			err := g.AddEdge(tc.parent, tc.child)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidHierarchy))
			assert.Equal(t, before, g.Ancestors(tc.parent))
			assert.NotContains(t, g.Parents(tc.child), tc.parent)
		})
	}
}

func TestGraph_AddEdgesReportsPosition(t *testing.T) {
	_, err := NewGraphFromEdges([]Edge{{"a", "b"}, {"b", "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge 1")
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))
}

func TestGraph_Siblings(t *testing.T) {
	g := mustGraph(t, fixtureEdges())

	assert.Equal(t, []ClassID{"cat"}, g.Siblings("dog"))
	assert.Equal(t, []ClassID{"truck"}, g.Siblings("car"))
	assert.Equal(t, []ClassID{"vehicle"}, g.Siblings("animal"))
	assert.Empty(t, g.Siblings("puppy"))
	assert.Empty(t, g.Siblings("entity"))
	assert.Empty(t, g.Siblings("unicorn"))
}

func TestGraph_SiblingSymmetry(t *testing.T) {
	g := mustGraph(t, fixtureEdges())
	classes := g.Classes()
	for _, a := range classes {
		for _, b := range g.Siblings(a) {
			assert.Contains(t, g.Siblings(b), a, "%s is a sibling of %s but not vice versa", b, a)
		}
	}
}

func TestGraph_IsAncestorOf(t *testing.T) {
	g := mustGraph(t, fixtureEdges())

	assert.True(t, g.IsAncestorOf("animal", "dog"))
	assert.True(t, g.IsAncestorOf("entity", "puppy"))
	assert.True(t, g.IsAncestorOf("pet", "puppy"))
	assert.False(t, g.IsAncestorOf("dog", "animal"))
	assert.False(t, g.IsAncestorOf("dog", "dog"))
	assert.False(t, g.IsAncestorOf("vehicle", "dog"))
	assert.False(t, g.IsAncestorOf("animal", "unicorn"))

	var empty *Graph
	assert.False(t, empty.IsAncestorOf("animal", "dog"))
}

func TestGraph_ShareCommonAncestor(t *testing.T) {
	g := mustGraph(t, fixtureEdges())

	// shared grandparent
	assert.True(t, g.ShareCommonAncestor("dog", "truck"))
	assert.True(t, g.ShareCommonAncestor("puppy", "cat"))
	// animal is an ancestor of dog, but animal's only ancestor (entity) is shared too
	assert.True(t, g.ShareCommonAncestor("animal", "dog"))
	// a root has no ancestors to share
	assert.False(t, g.ShareCommonAncestor("entity", "dog"))
	assert.False(t, g.ShareCommonAncestor("unicorn", "griffin"))
	assert.False(t, g.ShareCommonAncestor("unicorn", "dog"))
}

func TestGraph_UnknownAndRootClasses(t *testing.T) {
	g := mustGraph(t, fixtureEdges())

	assert.True(t, g.Has("entity"))
	assert.True(t, g.Has("puppy"))
	assert.False(t, g.Has("unicorn"))
	assert.Equal(t, 9, g.Len())
	assert.Empty(t, g.Parents("entity"))
	assert.Empty(t, g.Parents("unicorn"))
	assert.Empty(t, g.Children("puppy"))
	assert.Equal(t, []ClassID{"cat", "dog"}, g.Children("pet"))
}
