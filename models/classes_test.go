package models

import (
	"testing"

	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassNames_Lookup(t *testing.T) {
	names, err := NewClassNames(
		OutputClass{ID: "/m/0bt9lr", Name: "Dog"},
		OutputClass{ID: "/m/0jbk", Name: "Animal"},
	)
	require.NoError(t, err)

	name, err := names.Name("/m/0bt9lr")
	require.NoError(t, err)
	assert.Equal(t, "Dog", name)

	id, err := names.ID("Animal")
	require.NoError(t, err)
	assert.Equal(t, hierarchy.ClassID("/m/0jbk"), id)

	_, err = names.ID("Unicorn")
	assert.True(t, errors.Is(err, ErrUnknownClassName))

	_, err = names.Name("/m/none")
	assert.True(t, errors.Is(err, ErrUnknownClassID))

	assert.Equal(t, 2, names.Len())
	assert.Equal(t, []OutputClass{{ID: "/m/0bt9lr", Name: "Dog"}, {ID: "/m/0jbk", Name: "Animal"}}, names.Classes())
}

func TestClassNames_NamesSkipsUnnamedIDs(t *testing.T) {
	names, err := NewClassNames(OutputClass{ID: "a", Name: "Alpha"}, OutputClass{ID: "c", Name: "Gamma"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Gamma", "Alpha"}, names.Names([]hierarchy.ClassID{"c", "b", "a"}))
	assert.Empty(t, names.Names(nil))
}

func TestClassNames_AddRejectsConflicts(t *testing.T) {
	names, err := NewClassNames()
	require.NoError(t, err)

	require.NoError(t, names.Add("a", "Alpha"))
	require.NoError(t, names.Add("a", "Alpha"))
	assert.Error(t, names.Add("a", "Other"))
	assert.Error(t, names.Add("b", "Alpha"))
	assert.Error(t, names.Add("", "Empty"))
	assert.Error(t, names.Add("e", ""))
	assert.Equal(t, 1, names.Len())
}
