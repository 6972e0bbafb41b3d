// Package hierarchy - Class taxonomy graph used to gate detection suppression.
package hierarchy

import (
	"sort"

	"github.com/pkg/errors"
)

// ClassID is an opaque taxonomy node identifier (not the display name).
type ClassID string

// Edge is a single parent -> child relation.
type Edge struct {
	Parent ClassID
	Child  ClassID
}

type classSet map[ClassID]struct{}

func (s classSet) sorted() []ClassID {
	out := make([]ClassID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Graph is a directed acyclic class hierarchy. A class may have several parents.
//
// Ancestor sets are maintained eagerly: every AddEdge pushes the new ancestors down to
// the child and all of its existing descendants, so query results never depend on the
// order in which edges were inserted.
//
// A Graph is not safe for concurrent mutation. Once built it may be shared by any number
// of readers; none of the query methods write.
type Graph struct {
	parents   map[ClassID]classSet
	children  map[ClassID]classSet
	ancestors map[ClassID]classSet
	classes   classSet
}

// NewGraph allocates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		parents:   make(map[ClassID]classSet),
		children:  make(map[ClassID]classSet),
		ancestors: make(map[ClassID]classSet),
		classes:   make(classSet),
	}
}

// NewGraphFromEdges builds a Graph from an edge list.
func NewGraphFromEdges(edges []Edge) (*Graph, error) {
	g := NewGraph()
	if err := g.AddEdges(edges); err != nil {
		return nil, err
	}
	return g, nil
}

// AddEdge registers parent as an immediate parent of child.
//
// Adding an edge that already exists is a no-op.
//
// Arguments:
//   - parent: The coarser class.
//   - child: The more specific class.
//
// Returns:
//   - error: ErrInvalidHierarchy for empty ids, self-loops, or an edge that would close a
//     cycle. The graph is unchanged when an error is returned.
func (g *Graph) AddEdge(parent, child ClassID) error {
	if parent == "" || child == "" {
		return errors.Wrapf(ErrInvalidHierarchy, "empty class id in edge %q -> %q", parent, child)
	}
	if parent == child {
		return errors.Wrapf(ErrInvalidHierarchy, "self-loop on %q", parent)
	}
	if _, ok := g.ancestors[parent][child]; ok {
		return errors.Wrapf(ErrInvalidHierarchy, "edge %q -> %q closes a cycle", parent, child)
	}
	if _, ok := g.parents[child][parent]; ok {
		return nil
	}

	addTo(g.parents, child, parent)
	addTo(g.children, parent, child)
	g.classes[parent] = struct{}{}
	g.classes[child] = struct{}{}

	gain := make(classSet, len(g.ancestors[parent])+1)
	gain[parent] = struct{}{}
	for a := range g.ancestors[parent] {
		gain[a] = struct{}{}
	}
	g.propagate(child, gain)
	return nil
}

// AddEdges inserts edges in order and stops at the first invalid one.
func (g *Graph) AddEdges(edges []Edge) error {
	for i, e := range edges {
		if err := g.AddEdge(e.Parent, e.Child); err != nil {
			return errors.Wrapf(err, "edge %d", i)
		}
	}
	return nil
}

// propagate unions gain into the ancestor set of start and every descendant of start.
// A node whose set already holds all of gain is not expanded: its descendants hold a
// superset of its ancestors already.
func (g *Graph) propagate(start ClassID, gain classSet) {
	queue := []ClassID{start}
	visited := classSet{start: {}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		set, ok := g.ancestors[n]
		if !ok {
			set = make(classSet, len(gain))
			g.ancestors[n] = set
		}
		grew := false
		for a := range gain {
			if _, have := set[a]; !have {
				set[a] = struct{}{}
				grew = true
			}
		}
		if !grew && n != start {
			continue
		}

		for c := range g.children[n] {
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			queue = append(queue, c)
		}
	}
}

func addTo(m map[ClassID]classSet, key, value ClassID) {
	set, ok := m[key]
	if !ok {
		set = make(classSet)
		m[key] = set
	}
	set[value] = struct{}{}
}

// Has reports whether id appears on either side of any edge.
func (g *Graph) Has(id ClassID) bool {
	_, ok := g.classes[id]
	return ok
}

// Len returns the number of known classes.
func (g *Graph) Len() int {
	return len(g.classes)
}

// Classes returns every known class, sorted.
func (g *Graph) Classes() []ClassID {
	return g.classes.sorted()
}

// Ancestors returns the full transitive ancestor set of id, sorted.
// Roots and unknown classes have no ancestors.
func (g *Graph) Ancestors(id ClassID) []ClassID {
	return g.ancestors[id].sorted()
}

// Parents returns the immediate parents of id, sorted.
func (g *Graph) Parents(id ClassID) []ClassID {
	return g.parents[id].sorted()
}

// Children returns the immediate children of id, sorted.
func (g *Graph) Children(id ClassID) []ClassID {
	return g.children[id].sorted()
}

// Siblings returns every class other than id that shares at least one immediate parent
// with id.
func (g *Graph) Siblings(id ClassID) []ClassID {
	out := make(classSet)
	for p := range g.parents[id] {
		for c := range g.children[p] {
			if c != id {
				out[c] = struct{}{}
			}
		}
	}
	return out.sorted()
}

// IsAncestorOf reports whether candidate is a transitive ancestor of id.
func (g *Graph) IsAncestorOf(candidate, id ClassID) bool {
	if g == nil {
		return false
	}
	_, ok := g.ancestors[id][candidate]
	return ok
}

// ShareCommonAncestor reports whether a and b have at least one ancestor in common.
func (g *Graph) ShareCommonAncestor(a, b ClassID) bool {
	sa, sb := g.ancestors[a], g.ancestors[b]
	if len(sa) > len(sb) {
		sa, sb = sb, sa
	}
	for id := range sa {
		if _, ok := sb[id]; ok {
			return true
		}
	}
	return false
}
