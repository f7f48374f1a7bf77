package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext_TransitionTable(t *testing.T) {
	cases := []struct {
		from ItemState
		op   Op
		want ItemState
	}{
		{Unchanged, OpInsert, Added},
		{Unchanged, OpFieldChange, Modified},
		{Unchanged, OpRemove, Deleted},
		{Unchanged, OpClear, Deleted},

		{Added, OpInsert, Added},
		{Added, OpFieldChange, Added},
		{Added, OpRemove, Added},
		{Added, OpClear, Added},

		{Modified, OpInsert, Added},
		{Modified, OpFieldChange, Modified},
		{Modified, OpRemove, Deleted},
		{Modified, OpClear, Deleted},

		{Deleted, OpInsert, Added},
		{Deleted, OpFieldChange, Deleted},
		{Deleted, OpRemove, Deleted},
		{Deleted, OpClear, Deleted},
	}

	for _, tc := range cases {
		t.Run(tc.from.String()+"/"+tc.op.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Next(tc.from, tc.op))
		})
	}
}

func TestDiscards(t *testing.T) {
	assert.True(t, Discards(Added, OpRemove))
	assert.True(t, Discards(Added, OpClear))
	assert.False(t, Discards(Added, OpFieldChange))
	assert.False(t, Discards(Modified, OpRemove))
	assert.False(t, Discards(Unchanged, OpClear))
}

func TestItemState_String(t *testing.T) {
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "ItemState(9)", ItemState(9).String())
	assert.False(t, ItemState(-1).Valid())
}
