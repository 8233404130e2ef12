// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/vote-easy/models"
)

var ErrNotFound = errors.New("tabulation not found")

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database and verifies the connection. dbType is
// "sqlite" or "postgres".
func Open(dbType, url string) (*sql.DB, error) {
	if dbType != DriverSQLite && dbType != DriverPostgres {
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if dbType == DriverSQLite {
		// SQLite allows one writer; an in-memory database also lives and dies
		// with its connection
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// Tabulation is a stored tabulation run
type Tabulation struct {
	ID         string
	Protocol   models.Protocol
	Source     string
	Ballots    int
	Seats      int
	Winners    []string
	ComputedAt time.Time
	Payload    []byte
	AuditText  string
	AuditSeal  string
	Entries    []models.AuditEntry
}

// Response converts the stored row into its API form
func (t Tabulation) Response() models.TabulationResponse {
	return models.TabulationResponse{
		ID:         t.ID,
		Protocol:   t.Protocol,
		Source:     t.Source,
		Ballots:    t.Ballots,
		Seats:      t.Seats,
		Winners:    t.Winners,
		ComputedAt: t.ComputedAt,
		Result:     json.RawMessage(t.Payload),
	}
}

// SaveTabulation stores the snapshot row and its audit entries in one
// transaction
func SaveTabulation(ctx context.Context, db *sql.DB, t Tabulation) error {
	winners, err := json.Marshal(t.Winners)
	if err != nil {
		return fmt.Errorf("failed to encode winners: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tabulation (id, protocol, source, ballot_count, seat_count, winners, computed_at, payload, audit_text, audit_seal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, string(t.Protocol), t.Source, t.Ballots, t.Seats, string(winners),
		t.ComputedAt.UTC(), string(t.Payload), t.AuditText, t.AuditSeal)
	if err != nil {
		return fmt.Errorf("failed to insert tabulation: %w", err)
	}

	for _, e := range t.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_entry (tabulation_id, seq, kind, round, message)
			VALUES ($1, $2, $3, $4, $5)
		`, t.ID, e.Seq, e.Kind, e.Round, e.Message)
		if err != nil {
			return fmt.Errorf("failed to insert audit entry %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tabulation: %w", err)
	}
	return nil
}

// GetTabulation loads one stored tabulation with its result payload and
// rendered audit trail. Audit entries are not loaded.
func GetTabulation(ctx context.Context, db *sql.DB, id string) (Tabulation, error) {
	var t Tabulation
	var protocol, winners, payload string
	err := db.QueryRowContext(ctx, `
		SELECT id, protocol, source, ballot_count, seat_count, winners, computed_at, payload, audit_text, audit_seal
		FROM tabulation
		WHERE id = $1
	`, id).Scan(
		&t.ID, &protocol, &t.Source, &t.Ballots, &t.Seats, &winners,
		&t.ComputedAt, &payload, &t.AuditText, &t.AuditSeal,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Tabulation{}, ErrNotFound
	}
	if err != nil {
		return Tabulation{}, fmt.Errorf("failed to query tabulation: %w", err)
	}

	t.Protocol = models.Protocol(protocol)
	t.Payload = []byte(payload)
	if err := json.Unmarshal([]byte(winners), &t.Winners); err != nil {
		return Tabulation{}, fmt.Errorf("failed to decode winners: %w", err)
	}
	return t, nil
}

// ListTabulations returns the most recent tabulations, newest first, without
// payloads
func ListTabulations(ctx context.Context, db *sql.DB, limit int) ([]Tabulation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, protocol, source, ballot_count, seat_count, winners, computed_at
		FROM tabulation
		ORDER BY computed_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tabulations: %w", err)
	}
	defer rows.Close()

	tabulations := []Tabulation{}
	for rows.Next() {
		var t Tabulation
		var protocol, winners string
		if err := rows.Scan(&t.ID, &protocol, &t.Source, &t.Ballots, &t.Seats, &winners, &t.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tabulation: %w", err)
		}
		t.Protocol = models.Protocol(protocol)
		if err := json.Unmarshal([]byte(winners), &t.Winners); err != nil {
			return nil, fmt.Errorf("failed to decode winners: %w", err)
		}
		tabulations = append(tabulations, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tabulations: %w", err)
	}
	return tabulations, nil
}

// GetAuditEntries returns a tabulation's audit entries in order
func GetAuditEntries(ctx context.Context, db *sql.DB, id string) ([]models.AuditEntry, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tabulation WHERE id = $1`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query tabulation: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := db.QueryContext(ctx, `
		SELECT seq, kind, round, message
		FROM audit_entry
		WHERE tabulation_id = $1
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.Seq, &e.Kind, &e.Round, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	return entries, nil
}
