// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"

	"focustimer/internal/db"
)

// MigrationsDir is the repository's migrations directory.
func MigrationsDir() string {
	_, currentFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
}

// OpenDB opens a migrated sqlite database under t.TempDir.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if _, err := db.RunMigrations(database, MigrationsDir()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}
