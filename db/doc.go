// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores tabulation results and their audit trails.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, the default) or "postgres"
(github.com/lib/pq). The caller imports the driver it needs:

	import (
		_ "github.com/lib/pq"
		_ "modernc.org/sqlite"
	)

	conn, err := db.Open("sqlite", "vote-easy.db")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - tabulation: one row per run; protocol, counts, winners, the JSON result
    payload, the rendered audit trail and its seal
  - audit_entry: the run's events, one row each, ordered by seq

# Relationships

	tabulation 1──* audit_entry

The foreign key uses ON DELETE CASCADE.

# Storing

SaveTabulation writes the tabulation row and every audit entry in a single
transaction, so a stored run always has its complete trail. Lookups of an
unknown ID return ErrNotFound.
*/
package db
