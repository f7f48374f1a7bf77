package committer

import "context"

// Executor runs individual operations inside an open transaction.
// Each method returns the number of affected rows.
type Executor interface {
	ExecuteInsert(ctx context.Context, table string, set []Param) (int64, error)
	ExecuteUpdate(ctx context.Context, table string, set, keys []Param) (int64, error)
	ExecuteDelete(ctx context.Context, table string, keys []Param) (int64, error)
}

// Store owns the transaction boundary. RunInTransaction begins a transaction,
// calls fn, and commits only when fn returns nil; otherwise it rolls back and
// returns fn's error.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex Executor) error) error
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, fn func(ctx context.Context, ex Executor) error) error

func (f StoreFunc) RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex Executor) error) error {
	return f(ctx, fn)
}
