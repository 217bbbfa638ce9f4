package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)

	err := db.PingContext(context.Background())
	assert.NoError(t, err)
}

func TestDB_MigrationsApplied(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	// All four tables must exist after migration.
	for _, table := range []string{"slots", "bookings", "canceled_bookings", "users"} {
		var name string
		err := db.QueryRowContext(context.Background(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestDB_MigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-run migrations or fail.
	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	version, err := db.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}
