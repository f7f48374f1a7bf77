// Package excel persists tables as sheets of a single xlsx workbook. The
// first row of each sheet holds the column names. A transaction loads the
// whole workbook, applies operations in memory and saves only on success.
package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

type sheet struct {
	header []string
	rows   [][]any
}

func (s *sheet) column(name string) int {
	return slices.Index(s.header, name)
}

// Store implements committer.Store on top of an xlsx file.
type Store struct {
	path string
	mu   sync.Mutex
	// schemas holds header rows for sheets that do not exist yet.
	schemas map[string][]string
}

// New returns a store backed by the workbook at path. The file is created on
// the first successful transaction.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, ErrMissingFilePath
	}
	return &Store{path: path, schemas: make(map[string][]string)}, nil
}

// DefineTable declares the columns of a sheet so that inserts into a
// workbook that lacks it start from a known header.
func (s *Store) DefineTable(table string, columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[table] = slices.Clone(columns)
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, ex committer.Executor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	sheets, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(ctx, &executor{store: s, sheets: sheets}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.save(sheets)
}

// LoadRows returns every row of the sheet named table, projected to columns.
// Columns the sheet does not carry are reported as nil.
func (s *Store) LoadRows(ctx context.Context, table string, columns []string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheets, err := s.load()
	if err != nil {
		return nil, err
	}
	sh, ok := sheets[table]
	if !ok {
		return nil, nil
	}
	out := make([]map[string]any, 0, len(sh.rows))
	for _, row := range sh.rows {
		m := make(map[string]any, len(columns))
		for _, c := range columns {
			if i := sh.column(c); i >= 0 {
				m[c] = row[i]
			} else {
				m[c] = nil
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) load() (map[string]*sheet, error) {
	sheets := make(map[string]*sheet)
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sheets, nil
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		sh := &sheet{header: rows[0]}
		for i, raw := range rows[1:] {
			if len(raw) == 0 {
				continue
			}
			row := make([]any, len(sh.header))
			for j := range sh.header {
				if j >= len(raw) {
					continue
				}
				v, err := readCell(f, name, j+1, i+2, raw[j])
				if err != nil {
					return nil, err
				}
				row[j] = v
			}
			sh.rows = append(sh.rows, row)
		}
		sheets[name] = sh
	}
	return sheets, nil
}

func (s *Store) save(sheets map[string]*sheet) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	defaultSheet := f.GetSheetName(0)
	for _, name := range names {
		if name != defaultSheet {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
		}
		sh := sheets[name]
		header := make([]any, len(sh.header))
		for i, h := range sh.header {
			header[i] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write header of %s: %w", name, err)
		}
		for i, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			values := slices.Clone(row)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write row %d of %s: %w", i+2, name, err)
			}
		}
	}
	if len(names) > 0 && !slices.Contains(names, defaultSheet) {
		_ = f.DeleteSheet(defaultSheet)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type executor struct {
	store  *Store
	sheets map[string]*sheet
}

func (e *executor) sheet(table string, set []committer.Param) *sheet {
	if sh, ok := e.sheets[table]; ok {
		return sh
	}
	header := slices.Clone(e.store.schemas[table])
	if len(header) == 0 {
		header = committer.Columns(set)
	}
	sh := &sheet{header: header}
	e.sheets[table] = sh
	return sh
}

func (e *executor) ExecuteInsert(_ context.Context, table string, set []committer.Param) (int64, error) {
	sh := e.sheet(table, set)
	row := make([]any, len(sh.header))
	for _, p := range set {
		i := sh.column(p.Column)
		if i < 0 {
			return 0, fmt.Errorf("%w %q in sheet %s", ErrUnknownColumn, p.Column, table)
		}
		row[i] = p.Value
	}
	sh.rows = append(sh.rows, row)
	return 1, nil
}

func (e *executor) ExecuteUpdate(_ context.Context, table string, set, keys []committer.Param) (int64, error) {
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}
	sh, ok := e.sheets[table]
	if !ok {
		return 0, nil
	}
	for _, p := range set {
		if sh.column(p.Column) < 0 {
			return 0, fmt.Errorf("%w %q in sheet %s", ErrUnknownColumn, p.Column, table)
		}
	}
	var n int64
	for _, row := range sh.rows {
		if !sh.matches(row, keys) {
			continue
		}
		for _, p := range set {
			row[sh.column(p.Column)] = p.Value
		}
		n++
	}
	return n, nil
}

func (e *executor) ExecuteDelete(_ context.Context, table string, keys []committer.Param) (int64, error) {
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}
	sh, ok := e.sheets[table]
	if !ok {
		return 0, nil
	}
	before := len(sh.rows)
	sh.rows = slices.DeleteFunc(sh.rows, func(row []any) bool { return sh.matches(row, keys) })
	return int64(before - len(sh.rows)), nil
}

// matches compares cells textually since the workbook loses Go types.
func (s *sheet) matches(row []any, keys []committer.Param) bool {
	for _, k := range keys {
		i := s.column(k.Column)
		if i < 0 || fmt.Sprint(row[i]) != fmt.Sprint(k.Value) {
			return false
		}
	}
	return true
}

// readCell keeps text cells verbatim so values like "007" survive a round
// trip; other cells are parsed.
func readCell(f *excelize.File, sheetName string, col, row int, raw string) (any, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return nil, fmt.Errorf("read cell %s of %s: %w", cell, sheetName, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return raw, nil
	}
	return parseCell(raw), nil
}

func parseCell(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch v {
	case "TRUE", "true":
		return true
	case "FALSE", "false":
		return false
	}
	return v
}
