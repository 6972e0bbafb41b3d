// Package models - class id and display name tables.
package models

import (
	"sort"

	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/pkg/errors"
)

// ErrUnknownClassName is returned when a display name has no class id.
var ErrUnknownClassName = errors.New("unknown class name")

// ErrUnknownClassID is returned when a class id has no display name.
var ErrUnknownClassID = errors.New("unknown class id")

// OutputClass represents one labelled taxonomy node.
type OutputClass struct {
	// The opaque id used by the hierarchy.
	ID hierarchy.ClassID
	// The human-readable label.
	Name string
}

// ClassNames is a bidirectional id <-> display name table.
type ClassNames struct {
	idToName map[hierarchy.ClassID]string
	// nameToID for fast lookup by name
	nameToID map[string]hierarchy.ClassID
}

// NewClassNames creates an empty table, optionally seeded with classes.
func NewClassNames(classes ...OutputClass) (*ClassNames, error) {
	t := &ClassNames{
		idToName: make(map[hierarchy.ClassID]string, len(classes)),
		nameToID: make(map[string]hierarchy.ClassID, len(classes)),
	}
	for _, c := range classes {
		if err := t.Add(c.ID, c.Name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add registers a class. Ids and names must both be unique; re-adding an identical pair
// is a no-op.
func (t *ClassNames) Add(id hierarchy.ClassID, name string) error {
	if id == "" || name == "" {
		return errors.Errorf("class id and name must be non-empty (id %q, name %q)", id, name)
	}
	if prev, ok := t.idToName[id]; ok {
		if prev == name {
			return nil
		}
		return errors.Errorf("class id %q already named %q, cannot rename to %q", id, prev, name)
	}
	if prev, ok := t.nameToID[name]; ok {
		return errors.Errorf("class name %q already used by id %q", name, prev)
	}
	t.idToName[id] = name
	t.nameToID[name] = id
	return nil
}

// Name returns the display name for a class id.
func (t *ClassNames) Name(id hierarchy.ClassID) (string, error) {
	name, ok := t.idToName[id]
	if !ok {
		return "", errors.Wrapf(ErrUnknownClassID, "%q", id)
	}
	return name, nil
}

// ID returns the class id for a display name.
func (t *ClassNames) ID(name string) (hierarchy.ClassID, error) {
	id, ok := t.nameToID[name]
	if !ok {
		return "", errors.Wrapf(ErrUnknownClassName, "%q", name)
	}
	return id, nil
}

// Names maps ids to display names, in order. Ids without a name are skipped.
func (t *ClassNames) Names(ids []hierarchy.ClassID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := t.idToName[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the number of registered classes.
func (t *ClassNames) Len() int {
	return len(t.idToName)
}

// Classes returns every registered class sorted by id.
func (t *ClassNames) Classes() []OutputClass {
	out := make([]OutputClass, 0, len(t.idToName))
	for id, name := range t.idToName {
		out = append(out, OutputClass{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
