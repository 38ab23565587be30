// Package sqlite is the embedded journal backend. It stores the same
// history as the postgres backend in a single local file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Migrations returns the schema statements. SQLite executes one statement
// per Exec, so each entry is a single statement.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS ledger_accounts (
			id              INTEGER PRIMARY KEY,
			customer_id     INTEGER NOT NULL,
			opening_balance TEXT NOT NULL,
			created_at      TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS ledger_transfers (
			transfer_id     TEXT PRIMARY KEY,
			idempotency_key TEXT NOT NULL UNIQUE,
			from_account_id INTEGER NOT NULL,
			to_account_id   INTEGER NOT NULL,
			amount          TEXT NOT NULL,
			status          TEXT NOT NULL,
			applied_at      TEXT NOT NULL,
			journaled_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_transfers_applied ON ledger_transfers(applied_at)`,
	}
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Migrations() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}
