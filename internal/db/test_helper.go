package db

import (
	"path/filepath"
	"testing"
)

// NewTest creates a migrated throwaway database for tests.
func NewTest(tb testing.TB) *DB {
	tb.Helper()

	database, err := New(filepath.Join(tb.TempDir(), "test.db"))
	if err != nil {
		tb.Fatalf("Failed to create test database: %v", err)
	}
	tb.Cleanup(func() { database.Close() })

	if err := RunMigrations(database.Conn()); err != nil {
		tb.Fatalf("Failed to run migrations: %v", err)
	}
	return database
}
