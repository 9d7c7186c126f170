// Package storagetest opens throwaway backends for store tests.
package storagetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
)

// OpenSQLite returns a migrated in-memory database pinned to one connection.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// OpenFile returns a JSON document store in a temp directory.
func OpenFile(t testing.TB) *filedb.DB {
	t.Helper()
	db, err := filedb.Open(filepath.Join(t.TempDir(), "gym.json"))
	if err != nil {
		t.Fatalf("open filedb: %v", err)
	}
	return db
}
