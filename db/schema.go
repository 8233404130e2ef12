// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are written to run unchanged on SQLite and PostgreSQL.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tabulation (
    id TEXT PRIMARY KEY,
    protocol TEXT NOT NULL CHECK (protocol IN ('IR', 'OPL', 'MPO')),
    source TEXT NOT NULL DEFAULT '',
    ballot_count INTEGER NOT NULL,
    seat_count INTEGER NOT NULL,
    winners TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    payload TEXT NOT NULL,
    audit_text TEXT NOT NULL,
    audit_seal TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_tabulation_computed_at ON tabulation(computed_at)`,
	`CREATE TABLE IF NOT EXISTS audit_entry (
    tabulation_id TEXT NOT NULL REFERENCES tabulation(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    round INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL,
    PRIMARY KEY (tabulation_id, seq)
)`,
}
