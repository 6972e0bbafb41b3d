package postprocess

import (
	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/pkg/errors"
)

// Gate decides whether a candidate that overlaps a kept detection above the IoU
// threshold is retained anyway. It is only consulted for overlapping pairs.
type Gate func(graph *hierarchy.Graph, kept, candidate hierarchy.ClassID) bool

// AncestorGate retains the candidate when the kept class is a taxonomic ancestor of the
// candidate class, e.g. a kept "animal" box does not suppress a "dog" box.
func AncestorGate(graph *hierarchy.Graph, kept, candidate hierarchy.ClassID) bool {
	return graph.IsAncestorOf(kept, candidate)
}

// RelatedGate retains the candidate when either class is an ancestor of the other.
func RelatedGate(graph *hierarchy.Graph, kept, candidate hierarchy.ClassID) bool {
	return graph.IsAncestorOf(kept, candidate) || graph.IsAncestorOf(candidate, kept)
}

// NoGate never retains; suppression degrades to plain greedy NMS.
func NoGate(*hierarchy.Graph, hierarchy.ClassID, hierarchy.ClassID) bool {
	return false
}

// Gate names accepted by GateByName.
const (
	GateAncestor = "ancestor"
	GateRelated  = "related"
	GateNone     = "none"
)

// GateByName resolves a gate policy from its configuration name. The empty string
// selects AncestorGate.
func GateByName(name string) (Gate, error) {
	switch name {
	case "", GateAncestor:
		return AncestorGate, nil
	case GateRelated:
		return RelatedGate, nil
	case GateNone:
		return NoGate, nil
	}
	return nil, errors.Errorf("unknown gate policy %q", name)
}
