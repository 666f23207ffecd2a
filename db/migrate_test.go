package db

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchema(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(database, nil))

	for _, table := range []string{"schema_migrations", "jobs", "metrics", "config"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s must exist", table)
	}

	// Metrics row is seeded exactly once
	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM metrics`).Scan(&count))
	assert.Equal(t, 1, count)

	// Queue defaults are seeded
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM config`).Scan(&count))
	assert.GreaterOrEqual(t, count, 4)
}

func TestMigrateIsIdempotent(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(database, nil))
	require.NoError(t, Migrate(database, nil))
	require.NoError(t, Migrate(database, nil))

	// Re-running must not duplicate the seeded rows
	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM metrics`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "queue.db")

	database, err := Open(path, nil)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(database, nil))
}
