// Package sqlstore runs plans against a database/sql connection. Postgres is
// reached through pgx or lib/pq, SQLite through the pure-Go modernc driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

const pingTimeout = 5 * time.Second

// ErrNoKeys is returned for an update or delete without key columns.
var ErrNoKeys = errors.New("sqlstore: operation has no key columns")

// Store implements committer.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects with the named driver and pings the database.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect.Name == SQLite.Name {
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases alive across calls.
		db.SetMaxOpenConns(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return New(db, dialect), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying sql.DB for migrations and tests.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect returns the SQL dialect in use.
func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error {
	return s.db.Close()
}

// Exec runs statements in order outside of any plan, typically DDL.
func (s *Store) Exec(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	return nil
}

// RunInTransaction begins a transaction, runs fn and commits when fn
// succeeds. Any error rolls the transaction back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex committer.Executor) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &executor{tx: tx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRows reads every row of table, returning the requested columns.
func (s *Store) LoadRows(ctx context.Context, table string, columns []string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.selectSQL(table, columns))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		m := make(map[string]any, len(columns))
		for i, c := range columns {
			if b, ok := vals[i].([]byte); ok {
				m[c] = string(b)
				continue
			}
			m[c] = vals[i]
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

type executor struct {
	tx      *sql.Tx
	dialect Dialect
}

func (e *executor) ExecuteInsert(ctx context.Context, table string, set []committer.Param) (int64, error) {
	return e.exec(ctx, e.dialect.insertSQL(table, committer.Columns(set)), committer.Values(set))
}

func (e *executor) ExecuteUpdate(ctx context.Context, table string, set, keys []committer.Param) (int64, error) {
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}
	args := append(committer.Values(set), committer.Values(keys)...)
	return e.exec(ctx, e.dialect.updateSQL(table, committer.Columns(set), committer.Columns(keys)), args)
}

func (e *executor) ExecuteDelete(ctx context.Context, table string, keys []committer.Param) (int64, error) {
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}
	return e.exec(ctx, e.dialect.deleteSQL(table, committer.Columns(keys)), committer.Values(keys))
}

func (e *executor) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := e.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
