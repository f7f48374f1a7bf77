// Package memory provides an in-process transactional store. Tables are
// copied when a transaction begins and swapped in on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// ErrDuplicateKey is returned when an insert would create a second row with
// the same key columns.
var ErrDuplicateKey = errors.New("memory: duplicate key")

// ErrNoKeys is returned for an update or delete without key columns.
var ErrNoKeys = errors.New("memory: operation has no key columns")

// Row is one stored row keyed by column name.
type Row map[string]any

// Store keeps tables of rows in memory. Each table has a declared key used to
// reject duplicate inserts.
type Store struct {
	mu     sync.Mutex
	keys   map[string][]string
	tables map[string][]Row

	failAt  int
	failErr error
	calls   int
}

func NewStore() *Store {
	return &Store{
		keys:   make(map[string][]string),
		tables: make(map[string][]Row),
	}
}

// DefineTable declares the key columns of table.
func (s *Store) DefineTable(table string, keyColumns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[table] = append([]string(nil), keyColumns...)
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = nil
	}
}

// Seed appends rows outside of any transaction.
func (s *Store) Seed(table string, rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], cloneRow(r))
	}
}

// FailOn makes the n-th executed operation (1-based, counted across
// transactions) fail with err. n <= 0 disables the hook.
func (s *Store) FailOn(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt, s.failErr, s.calls = n, err, 0
}

// Rows returns a copy of the committed rows of table.
func (s *Store) Rows(table string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, len(s.tables[table]))
	for i, r := range s.tables[table] {
		out[i] = cloneRow(r)
	}
	return out
}

// LoadRows returns the committed rows of table restricted to columns.
func (s *Store) LoadRows(_ context.Context, table string, columns []string) ([]map[string]any, error) {
	rows := s.Rows(table)
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		m := make(map[string]any, len(columns))
		for _, c := range columns {
			m[c] = r[c]
		}
		out[i] = m
	}
	return out, nil
}

// RunInTransaction serializes transactions; fn works on a private copy of
// every table that is published only when fn returns nil.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex committer.Executor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &txn{store: s, tables: make(map[string][]Row, len(s.tables))}
	for name, rows := range s.tables {
		cp := make([]Row, len(rows))
		for i, r := range rows {
			cp[i] = cloneRow(r)
		}
		tx.tables[name] = cp
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.tables = tx.tables
	return nil
}

type txn struct {
	store  *Store
	tables map[string][]Row
}

func (t *txn) hook() error {
	s := t.store
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return s.failErr
	}
	return nil
}

func (t *txn) ExecuteInsert(_ context.Context, table string, set []committer.Param) (int64, error) {
	if err := t.hook(); err != nil {
		return 0, err
	}
	r := make(Row, len(set))
	for _, p := range set {
		r[p.Column] = p.Value
	}
	if keys := t.store.keys[table]; len(keys) > 0 {
		probe := make([]committer.Param, len(keys))
		for i, k := range keys {
			probe[i] = committer.Param{Column: k, Value: r[k]}
		}
		if len(t.match(table, probe)) > 0 {
			return 0, fmt.Errorf("%w: table %s", ErrDuplicateKey, table)
		}
	}
	t.tables[table] = append(t.tables[table], r)
	return 1, nil
}

func (t *txn) ExecuteUpdate(_ context.Context, table string, set, keys []committer.Param) (int64, error) {
	if err := t.hook(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}
	idx := t.match(table, keys)
	for _, i := range idx {
		for _, p := range set {
			t.tables[table][i][p.Column] = p.Value
		}
	}
	return int64(len(idx)), nil
}

func (t *txn) ExecuteDelete(_ context.Context, table string, keys []committer.Param) (int64, error) {
	if err := t.hook(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}
	idx := t.match(table, keys)
	if len(idx) == 0 {
		return 0, nil
	}
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	rows := t.tables[table]
	for _, i := range idx {
		rows = append(rows[:i], rows[i+1:]...)
	}
	t.tables[table] = rows
	return int64(len(idx)), nil
}

func (t *txn) match(table string, keys []committer.Param) []int {
	var out []int
	for i, r := range t.tables[table] {
		ok := true
		for _, k := range keys {
			if !reflect.DeepEqual(r[k.Column], k.Value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
