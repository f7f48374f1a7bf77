package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

func mixedCollection(t *testing.T) (*Collection[*row], []*row) {
	t.Helper()
	u1, m1, d1 := newRow(1, "u"), newRow(2, "m"), newRow(3, "d")
	c := seeded(u1, m1, d1)

	a1, a2 := newRow(10, "a1"), newRow(11, "a2")
	require.NoError(t, c.Append(a1))
	m1.SetName("m2")
	require.True(t, c.Remove(d1))
	require.NoError(t, c.Append(a2))
	return c, []*row{a1, a2, m1, d1}
}

func TestPlanner_Ordering(t *testing.T) {
	c, want := mixedCollection(t)

	plan, err := Plan(c, rowMapping, rowSet, rowKeys)
	require.NoError(t, err)

	ops := plan.Operations()
	require.Len(t, ops, 4)
	kinds := []committer.OpKind{ops[0].Kind, ops[1].Kind, ops[2].Kind, ops[3].Kind}
	assert.Equal(t, []committer.OpKind{committer.OpInsert, committer.OpInsert, committer.OpUpdate, committer.OpDelete}, kinds)
	for i, op := range ops {
		assert.Same(t, want[i], op.Record)
		assert.Equal(t, "rows", op.Table)
	}

	inserts, updates, deletes := plan.Counts()
	assert.Equal(t, [3]int{2, 1, 1}, [3]int{inserts, updates, deletes})
}

func TestPlanner_ParameterSets(t *testing.T) {
	c, _ := mixedCollection(t)
	plan, err := Plan(c, rowMapping, rowSet, rowKeys)
	require.NoError(t, err)
	ops := plan.Operations()

	insert := ops[0]
	assert.Equal(t, []string{"id", "name"}, committer.Columns(insert.Set), "natural key stays in the insert")
	assert.Empty(t, insert.Keys)

	update := ops[2]
	assert.Equal(t, []committer.Param{{Column: "name", Value: "m2"}}, update.Set)
	assert.Equal(t, []committer.Param{{Column: "id", Value: int64(2)}}, update.Keys)

	del := ops[3]
	assert.Empty(t, del.Set)
	assert.Equal(t, []committer.Param{{Column: "id", Value: int64(3)}}, del.Keys)
}

func TestPlanner_InsertWithoutKeyInSet(t *testing.T) {
	c := NewCollection[*row]()
	require.NoError(t, c.Append(newRow(7, "x")))

	plan, err := Plan(c, rowMapping, []string{"name"}, rowKeys)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, committer.Columns(plan.Operations()[0].Set))
}

func TestPlanner_IsDeterministic(t *testing.T) {
	c, _ := mixedCollection(t)
	p, err := NewPlanner(rowMapping, rowSet, rowKeys)
	require.NoError(t, err)

	assert.Equal(t, p.Plan(c), p.Plan(c))
}

func TestPlanner_ConfigurationErrors(t *testing.T) {
	cases := map[string]struct {
		mapping Mapping[*row]
		set     []string
		keys    []string
	}{
		"unknown set column": {rowMapping, []string{"id", "nope"}, rowKeys},
		"unknown key column": {rowMapping, rowSet, []string{"missing"}},
		"no keys":            {rowMapping, rowSet, nil},
		"duplicate set":      {rowMapping, []string{"name", "name"}, rowKeys},
		"no table":           {Mapping[*row]{Columns: rowMapping.Columns}, rowSet, rowKeys},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPlanner(tc.mapping, tc.set, tc.keys)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			var cfg *ConfigurationError
			assert.ErrorAs(t, err, &cfg)
		})
	}
}

func TestPlanner_ReportsAllUnknownColumns(t *testing.T) {
	_, err := NewPlanner(rowMapping, []string{"a", "name", "b"}, rowKeys)
	var cfg *ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"a", "b"}, cfg.Columns)
	assert.Equal(t, "rows", cfg.Table)
}

func TestPlanner_ChangedColumnsOnly(t *testing.T) {
	r := newRow(1, "a")
	c := seeded(r)
	r.SetSelected(true) // ignored by the collection, still dirty on the record
	r.SetName("b")

	p, err := NewPlanner(rowMapping, []string{"id", "name", "selected"}, rowKeys, WithChangedColumnsOnly())
	require.NoError(t, err)
	update := p.Plan(c).Operations()[0]
	assert.Equal(t, []string{"name", "selected"}, committer.Columns(update.Set))

	full, err := NewPlanner(rowMapping, []string{"id", "name"}, rowKeys)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, committer.Columns(full.Plan(c).Operations()[0].Set))
}

func TestPlanner_KeyOnlyTableSkipsUpdates(t *testing.T) {
	r := newRow(1, "a")
	c := seeded(r)
	r.SetName("b")

	core, logs := observer.New(zapcore.DebugLevel)
	plan, err := Plan(c, rowMapping, []string{"id"}, rowKeys, WithPlannerLogger(zap.New(core)))
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())

	skipped := logs.FilterMessage("modified record has no set columns, update skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, rowMapping.Table, skipped[0].ContextMap()["table"])
}
