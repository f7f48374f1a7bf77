package tracking

import (
	"context"
	"errors"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

type row struct {
	Tracked
	id       int64
	name     string
	selected bool
}

func newRow(id int64, name string) *row {
	return &row{id: id, name: name}
}

func (r *row) SetName(name string) {
	if r.name == name {
		return
	}
	r.name = name
	r.NotifyFieldChanged("name")
}

func (r *row) SetSelected(v bool) {
	if r.selected == v {
		return
	}
	r.selected = v
	r.NotifyFieldChanged("selected")
}

var rowMapping = Mapping[*row]{
	Table: "rows",
	Columns: []Column[*row]{
		{Name: "id", Field: "id", Value: func(r *row) any { return r.id }},
		{Name: "name", Field: "name", Value: func(r *row) any { return r.name }},
		{Name: "selected", Field: "selected", Value: func(r *row) any { return r.selected }},
	},
}

var (
	rowSet  = []string{"id", "name"}
	rowKeys = []string{"id"}
)

func seeded(rows ...*row) *Collection[*row] {
	c, err := NewSeeded(rows, WithIgnoredFields("selected"))
	if err != nil {
		panic(err)
	}
	return c
}

// recordingExecutor records operations and fails the failAt-th call (1-based).
type recordingExecutor struct {
	calls  int
	failAt int
	err    error
	done   []committer.OpKind
}

func (e *recordingExecutor) step(kind committer.OpKind) (int64, error) {
	e.calls++
	if e.failAt > 0 && e.calls == e.failAt {
		return 0, e.err
	}
	e.done = append(e.done, kind)
	return 1, nil
}

func (e *recordingExecutor) ExecuteInsert(context.Context, string, []committer.Param) (int64, error) {
	return e.step(committer.OpInsert)
}

func (e *recordingExecutor) ExecuteUpdate(context.Context, string, []committer.Param, []committer.Param) (int64, error) {
	return e.step(committer.OpUpdate)
}

func (e *recordingExecutor) ExecuteDelete(context.Context, string, []committer.Param) (int64, error) {
	return e.step(committer.OpDelete)
}

// fakeStore hands out a fresh recordingExecutor per transaction and reports
// whether the last transaction committed.
type fakeStore struct {
	failAt    int
	err       error
	last      *recordingExecutor
	committed int
	rolled    int
}

func (s *fakeStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex committer.Executor) error) error {
	s.last = &recordingExecutor{failAt: s.failAt, err: s.err}
	if err := fn(ctx, s.last); err != nil {
		s.rolled++
		return err
	}
	s.committed++
	return nil
}

var errBoom = errors.New("boom")
