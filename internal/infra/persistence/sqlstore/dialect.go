package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

var (
	// Postgres numbers its placeholders: $1, $2, ...
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	// SQLite uses positional question marks.
	SQLite = Dialect{Name: "sqlite", placeholder: func(int) string { return "?" }}
)

// Driver names registered by the imported database/sql drivers.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPgx, DriverPostgres:
		return Postgres, nil
	case DriverSQLite:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("sqlstore: unsupported driver %q", driver)
}

// Placeholder returns the n-th (1-based) bind placeholder.
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// Quote quotes an identifier. Both dialects accept standard double quotes.
func (d Dialect) Quote(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return `""`
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (d Dialect) insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = d.Quote(c)
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func (d Dialect) updateSQL(table string, set, keys []string) string {
	assigns := make([]string, len(set))
	for i, c := range set {
		assigns[i] = fmt.Sprintf("%s = %s", d.Quote(c), d.Placeholder(i+1))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		d.Quote(table), strings.Join(assigns, ", "), d.where(keys, len(set)+1))
}

func (d Dialect) deleteSQL(table string, keys []string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", d.Quote(table), d.where(keys, 1))
}

func (d Dialect) selectSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = d.Quote(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), d.Quote(table))
}

func (d Dialect) where(keys []string, first int) string {
	conds := make([]string, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("%s = %s", d.Quote(k), d.Placeholder(first+i))
	}
	return strings.Join(conds, " AND ")
}
