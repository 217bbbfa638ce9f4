package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the SQLite handle. All multi-row mutations (booking a slot,
// canceling a booking) run inside a single transaction so a crash can
// never leave a slot marked booked without a booking, or vice versa.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens (or creates) the database at path and applies pending
// migrations. Use ":memory:" for tests.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; serializing on one connection
	// avoids SQLITE_BUSY under concurrent requests and keeps the
	// in-memory variant on one shared database.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger}
	if err := db.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info().Str("path", path).Msg("database ready")
	return db, nil
}

// migrations is the ordered schema history. Entries are applied once,
// in order, tracked via PRAGMA user_version. Never edit a shipped
// entry; append a new one.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS slots (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		date     TEXT NOT NULL,
		time     TEXT NOT NULL,
		duration INTEGER NOT NULL DEFAULT 120,
		status   TEXT NOT NULL DEFAULT 'free'
	);
	CREATE INDEX IF NOT EXISTS idx_slots_date ON slots(date);
	CREATE INDEX IF NOT EXISTS idx_slots_date_time ON slots(date, time);`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		slot_id      INTEGER NOT NULL REFERENCES slots(id),
		full_name    TEXT NOT NULL,
		email        TEXT NOT NULL,
		phone        TEXT NOT NULL,
		address      TEXT NOT NULL,
		postal_code  TEXT NOT NULL DEFAULT '',
		city         TEXT NOT NULL DEFAULT '',
		units        INTEGER,
		note         TEXT,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		completed_by TEXT,
		completed_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_bookings_slot_id ON bookings(slot_id);`,

	`CREATE TABLE IF NOT EXISTS canceled_bookings (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id     INTEGER NOT NULL,
		slot_date      TEXT NOT NULL,
		slot_time      TEXT NOT NULL,
		duration       INTEGER NOT NULL,
		full_name      TEXT NOT NULL,
		email          TEXT NOT NULL,
		phone          TEXT NOT NULL,
		address        TEXT NOT NULL,
		postal_code    TEXT NOT NULL DEFAULT '',
		city           TEXT NOT NULL DEFAULT '',
		units          INTEGER,
		note           TEXT,
		reason         TEXT NOT NULL,
		canceled_by    TEXT NOT NULL,
		canceled_by_id INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_canceled_slot_date ON canceled_bookings(slot_date);`,

	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user',
		email         TEXT,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

func (db *DB) migrate(ctx context.Context) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not support placeholders.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("bump user_version to %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
		db.logger.Info().Int("version", i+1).Msg("migration applied")
	}

	return nil
}

// SchemaVersion returns the applied migration count.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version)
	return version, err
}
