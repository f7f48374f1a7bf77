package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// SpannerStore runs plans inside a Spanner read-write transaction. Operations
// are buffered as mutations and applied by Spanner at commit, so each one
// reports a single affected row.
type SpannerStore struct {
	client *spanner.Client
}

func NewSpannerStore(client *spanner.Client) *SpannerStore {
	return &SpannerStore{client: client}
}

func (s *SpannerStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex Executor) error) error {
	if s.client == nil {
		return fmt.Errorf("committer: spanner client is nil")
	}

	_, err := s.client.ReadWriteTransaction(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		return fn(ctx, &spannerExecutor{tx: tx})
	})
	return err
}

type spannerExecutor struct {
	tx *spanner.ReadWriteTransaction
}

func (e *spannerExecutor) ExecuteInsert(_ context.Context, table string, set []Param) (int64, error) {
	return 1, e.tx.BufferWrite([]*spanner.Mutation{InsertMutation(table, set)})
}

func (e *spannerExecutor) ExecuteUpdate(_ context.Context, table string, set, keys []Param) (int64, error) {
	return 1, e.tx.BufferWrite([]*spanner.Mutation{UpdateMutation(table, set, keys)})
}

func (e *spannerExecutor) ExecuteDelete(_ context.Context, table string, keys []Param) (int64, error) {
	return 1, e.tx.BufferWrite([]*spanner.Mutation{DeleteMutation(table, keys)})
}

// InsertMutation builds a spanner.Insert mutation.
func InsertMutation(table string, set []Param) *spanner.Mutation {
	return spanner.Insert(table, Columns(set), Values(set))
}

// UpdateMutation builds a spanner.Update mutation. Spanner locates the row by
// its primary key, so the key columns come first followed by the SET columns.
func UpdateMutation(table string, set, keys []Param) *spanner.Mutation {
	all := make([]Param, 0, len(keys)+len(set))
	all = append(all, keys...)
	all = append(all, set...)
	return spanner.Update(table, Columns(all), Values(all))
}

// DeleteMutation builds a spanner.Delete mutation for a single key.
func DeleteMutation(table string, keys []Param) *spanner.Mutation {
	return spanner.Delete(table, spanner.Key(Values(keys)))
}

// Mutations converts a plan into Spanner mutations for callers that want to
// buffer them in a transaction they already own.
func Mutations(plan *Plan) ([]*spanner.Mutation, error) {
	out := make([]*spanner.Mutation, 0, plan.Len())
	for i, op := range plan.Operations() {
		switch op.Kind {
		case OpInsert:
			out = append(out, InsertMutation(op.Table, op.Set))
		case OpUpdate:
			out = append(out, UpdateMutation(op.Table, op.Set, op.Keys))
		case OpDelete:
			out = append(out, DeleteMutation(op.Table, op.Keys))
		default:
			return nil, &OpError{Index: i, Op: op, Err: fmt.Errorf("unknown operation kind %d", int(op.Kind))}
		}
	}
	return out, nil
}
