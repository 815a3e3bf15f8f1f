// Package storage owns the SQLite schema and the instrumented connection
// shared by every SQLite-backed store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS account (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS document (
				collection TEXT NOT NULL,
				id TEXT NOT NULL,
				body TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (collection, id)
			)`,
		},
	},
	{
		version: 2,
		name:    "document_listing_order",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_document_created ON document (collection, created_at)`,
		},
	},
	{
		version: 3,
		name:    "notification_outbox",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS outbox (
				id TEXT PRIMARY KEY,
				payment_id TEXT NOT NULL DEFAULT '',
				kind TEXT NOT NULL DEFAULT '',
				recipient TEXT NOT NULL,
				sender TEXT NOT NULL DEFAULT '',
				reply_to TEXT NOT NULL DEFAULT '',
				subject TEXT NOT NULL,
				html TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				last_attempted_at TEXT,
				created_at TEXT NOT NULL,
				message_id TEXT NOT NULL DEFAULT '',
				last_error TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox (status, created_at)`,
		},
	},
}

// LatestSchemaVersion returns the version the newest migration produces.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// InitDB enables the pragmas the stores rely on.
// PRE: db is a valid database connection
// POST: foreign keys on and a busy timeout set; WAL enabled for file databases
func InitDB(db *sql.DB, dbPath string) error {
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return nil
}

// MigrateDB applies pending migrations in order, each in its own transaction.
// PRE: InitDB has run
// POST: SchemaVersion(db) == LatestSchemaVersion()
// INVARIANT: Running it again is a no-op
func MigrateDB(db *sql.DB, dbPath string) error {
	if err := InitDB(db, dbPath); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration, 0 for a fresh database.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}
