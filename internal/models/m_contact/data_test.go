package m_contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

func TestMapping_ResolvesDeclaredColumns(t *testing.T) {
	m := Mapping()
	assert.Equal(t, AllColumns, m.Names())

	cols, err := m.Resolve(SetColumns)
	require.NoError(t, err)
	require.Len(t, cols, 3)

	c, err := domain.NewContact(4, "Dee", "dee@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), cols[0].Value(c))
	assert.Equal(t, "Dee", cols[1].Value(c))
	assert.Equal(t, "dee@example.com", cols[2].Value(c))

	_, err = m.Resolve([]string{"phone"})
	assert.ErrorIs(t, err, tracking.ErrConfiguration)
}

func TestFromValues(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		id   int64
	}{
		{"sql", map[string]any{ColContactID: int64(1), ColName: "Ann", ColEmail: "a@x"}, 1},
		{"bytes", map[string]any{ColContactID: []byte("2"), ColName: []byte("Ann"), ColEmail: nil}, 2},
		{"sheet float", map[string]any{ColContactID: float64(3), ColName: "Ann"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromValues(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.id, c.ID())
			assert.Equal(t, "Ann", c.Name())
		})
	}

	_, err := FromValues(map[string]any{ColName: "Ann"})
	assert.Error(t, err)

	_, err = FromValues(map[string]any{ColContactID: int64(1), ColName: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyContactName)
}
