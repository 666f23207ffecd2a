// Package testing provides shared test helpers.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rishiakkala/queuectl/db"
)

// CreateTestDB creates a migrated SQLite database in a per-test temp
// directory. A file-backed database (rather than :memory:) keeps the full
// connection pool usable, which the concurrent claim tests rely on.
// Cleanup is registered via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "queuectl_test.db")

	database, err := db.Open(path, nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(database, nil); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}
