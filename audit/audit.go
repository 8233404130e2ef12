// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/tabulate"
)

// ErrSealed is returned when a trail that was already written is written again
var ErrSealed = errors.New("audit trail already written")

// Trail is the ordered record of one tabulation. It implements
// tabulate.Recorder.
type Trail struct {
	mu       sync.Mutex
	writeMu  sync.Mutex
	id       uuid.UUID
	protocol models.Protocol
	source   string
	started  time.Time
	events   []tabulate.Event
	sealed   bool
}

// NewTrail starts an empty trail with a fresh run ID. source names where the
// ballots came from (a file name, or "api").
func NewTrail(protocol models.Protocol, source string) *Trail {
	return &Trail{
		id:       uuid.New(),
		protocol: protocol,
		source:   source,
		started:  time.Now().UTC(),
	}
}

// ID is the run ID, also used as the stored tabulation ID
func (t *Trail) ID() string { return t.id.String() }

func (t *Trail) Protocol() models.Protocol { return t.protocol }

func (t *Trail) Source() string { return t.source }

func (t *Trail) Started() time.Time { return t.started }

// Record appends e to the trail
func (t *Trail) Record(e tabulate.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

// Events returns a copy of the recorded events
func (t *Trail) Events() []tabulate.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.events)
}

// Entries flattens the trail into storable rows, numbered from 1
func (t *Trail) Entries() []models.AuditEntry {
	events := t.Events()
	entries := make([]models.AuditEntry, len(events))
	for i, e := range events {
		entries[i] = models.AuditEntry{
			Seq:     i + 1,
			Kind:    string(e.Kind),
			Round:   e.Round,
			Message: e.Message,
		}
	}
	return entries
}

// Bytes renders the trail into memory
func (t *Trail) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the trail to path, replacing any existing file. A trail
// can be written once; later calls return ErrSealed.
// A failed write leaves the trail writable.
func (t *Trail) WriteFile(path string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	sealed := t.sealed
	t.mu.Unlock()
	if sealed {
		return ErrSealed
	}

	body, err := t.Bytes()
	if err != nil {
		return fmt.Errorf("failed to render audit trail: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write audit file: %w", err)
	}

	t.mu.Lock()
	t.sealed = true
	t.mu.Unlock()
	return nil
}
