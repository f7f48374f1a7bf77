package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

func seeded(t *testing.T) *tracking.Collection[*domain.Contact] {
	t.Helper()
	var cs []*domain.Contact
	for i, n := range []string{"Ann", "Bob", "Cid"} {
		c, err := domain.NewContact(int64(i+1), n, "")
		require.NoError(t, err)
		cs = append(cs, c)
	}
	coll, err := tracking.NewSeeded(cs, tracking.WithIgnoredFields(domain.FieldSelected))
	require.NoError(t, err)
	return coll
}

func TestEdits_Apply(t *testing.T) {
	coll := seeded(t)
	ed := edits{
		add:     listFlag{"4=Dee,dee@example.com"},
		rename:  listFlag{"2=Bobby"},
		remove:  listFlag{"3"},
		selects: listFlag{"1"},
	}
	require.NoError(t, ed.apply(coll))

	assert.Equal(t, tracking.Counts{Unchanged: 1, Added: 1, Modified: 1, Deleted: 1}, coll.Counts())
	dee, err := find(coll, 4)
	require.NoError(t, err)
	assert.Equal(t, "dee@example.com", dee.Email())
	ann, err := find(coll, 1)
	require.NoError(t, err)
	assert.True(t, ann.Selected())
}

func TestEdits_Errors(t *testing.T) {
	coll := seeded(t)

	err := (&edits{remove: listFlag{"9"}}).apply(coll)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)

	err = (&edits{rename: listFlag{"nope"}}).apply(coll)
	assert.Error(t, err)

	err = (&edits{add: listFlag{"5="}}).apply(coll)
	assert.ErrorIs(t, err, domain.ErrEmptyContactName)
	assert.Equal(t, 3, coll.Len())
}
