// Package databasetest opens throwaway migrated databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/database"
)

// Open returns a migrated SQLite database living in the test's temp dir.
// A file is used instead of :memory: so that every pooled connection sees
// the same data.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Exec runs seed statements, failing the test on the first error.
func Exec(t testing.TB, db *sqlx.DB, query string, args ...any) int64 {
	t.Helper()

	res, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("seed %q: %v", query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed %q: last insert id: %v", query, err)
	}
	return id
}
