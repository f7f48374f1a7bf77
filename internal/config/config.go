// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store backends selected by SYNC_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres" // pgx
	StorePQ       = "pq"       // lib/pq
	StoreSpanner  = "spanner"
	StoreExcel    = "excel"
)

var (
	ErrUnknownStore = errors.New("config: unknown store")
	ErrMissingDSN   = errors.New("config: SYNC_DSN is required")
	ErrMissingDB    = errors.New("config: SPANNER_DATABASE is required")
	ErrMissingPath  = errors.New("config: SYNC_EXCEL_PATH is required")
)

type Config struct {
	Store string
	DSN   string

	SpannerDatabase string
	ExcelPath       string

	RetainRemoved      bool
	ChangedColumnsOnly bool
	RequireRows        bool

	LogLevel    string
	LogDev      bool
	MetricsAddr string
}

// Load reads the configuration. Malformed booleans are reported; missing
// values take their defaults.
func Load() (Config, error) {
	var errs []error
	boolean := func(key string, def bool) bool {
		v, err := envBool(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := Config{
		Store:              strings.ToLower(env("SYNC_STORE", StoreMemory)),
		DSN:                env("SYNC_DSN", ""),
		SpannerDatabase:    env("SPANNER_DATABASE", "projects/test-project/instances/emulator-instance/databases/test-db"),
		ExcelPath:          env("SYNC_EXCEL_PATH", "contacts.xlsx"),
		RetainRemoved:      boolean("SYNC_RETAIN_REMOVED", true),
		ChangedColumnsOnly: boolean("SYNC_CHANGED_COLUMNS_ONLY", false),
		RequireRows:        boolean("SYNC_REQUIRE_ROWS", false),
		LogLevel:           env("LOG_LEVEL", "info"),
		LogDev:             boolean("LOG_DEV", false),
		MetricsAddr:        env("METRICS_ADDR", ""),
	}
	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite, StorePostgres, StorePQ:
		if c.DSN == "" {
			return ErrMissingDSN
		}
	case StoreSpanner:
		if c.SpannerDatabase == "" {
			return ErrMissingDB
		}
	case StoreExcel:
		if c.ExcelPath == "" {
			return ErrMissingPath
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownStore, c.Store)
	}
	return nil
}

// Driver returns the database/sql driver name for SQL stores.
func (c Config) Driver() string {
	switch c.Store {
	case StorePostgres:
		return "pgx"
	case StorePQ:
		return "postgres"
	case StoreSQLite:
		return "sqlite"
	}
	return ""
}

func env(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
