package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDDLStatements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE a (x INT);\r\n\r\nCREATE TABLE b (y INT);\n"), 0o600))

	stmts, err := readDDLStatements(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, stmts)

	require.NoError(t, os.WriteFile(path, []byte(" ; \n"), 0o600))
	_, err = readDDLStatements(path)
	assert.Error(t, err)
}

func TestSQLSchemaParses(t *testing.T) {
	stmts, err := readDDLStatements(filepath.Join("..", "..", "migrations", "sql", "001_initial_schema.sql"))
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}
