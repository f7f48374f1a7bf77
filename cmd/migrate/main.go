package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	databasepb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"go.uber.org/zap"

	"github.com/murkotick/contact-sync-service/internal/config"
	"github.com/murkotick/contact-sync-service/internal/infra/persistence/sqlstore"
	"github.com/murkotick/contact-sync-service/internal/pkg/logging"
)

// Applies the initial schema to the store selected by SYNC_STORE.
//
// Usage (emulator):
//
//	SPANNER_EMULATOR_HOST=localhost:9010 SYNC_STORE=spanner \
//	SPANNER_DATABASE=projects/test-project/instances/emulator-instance/databases/test-db \
//	go run ./cmd/migrate
//
// Usage (SQL):
//
//	SYNC_STORE=sqlite SYNC_DSN=contacts.db go run ./cmd/migrate
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	switch cfg.Store {
	case config.StoreSpanner:
		return migrateSpanner(ctx, cfg.SpannerDatabase, logger)
	case config.StoreSQLite, config.StorePostgres, config.StorePQ:
		return migrateSQL(ctx, cfg, logger)
	}
	logger.Info("store needs no schema", zap.String("store", cfg.Store))
	return nil
}

func migrateSpanner(ctx context.Context, db string, logger *zap.Logger) error {
	stmts, err := readDDLStatements(filepath.Join("migrations", "spanner", "001_initial_schema.sql"))
	if err != nil {
		return err
	}

	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("database admin client: %w", err)
	}
	defer admin.Close()

	op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   db,
		Statements: stmts,
	})
	if err != nil {
		return fmt.Errorf("UpdateDatabaseDdl: %w", err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("UpdateDatabaseDdl wait: %w", err)
	}
	logger.Info("schema applied", zap.Int("statements", len(stmts)), zap.String("database", db))
	return nil
}

func migrateSQL(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	stmts, err := readDDLStatements(filepath.Join("migrations", "sql", "001_initial_schema.sql"))
	if err != nil {
		return err
	}
	s, err := sqlstore.Open(ctx, cfg.Driver(), cfg.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Exec(ctx, stmts...); err != nil {
		return err
	}
	logger.Info("schema applied", zap.Int("statements", len(stmts)), zap.String("driver", cfg.Driver()))
	return nil
}

func readDDLStatements(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read DDL: %w", err)
	}
	// Normalize line endings for Windows-authored files.
	sql := strings.ReplaceAll(string(b), "\r\n", "\n")

	var out []string
	for _, p := range strings.Split(sql, ";") {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no DDL statements found in %s", path)
	}
	return out, nil
}
