// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/tabulate"
	"github.com/danielhkuo/vote-easy/tiebreak"
)

func irElection() tabulate.Election {
	return tabulate.Election{
		Protocol:   models.ProtocolIR,
		Candidates: "Rosen (D), Kleinberg (R), Chou (I), Royce (L)",
		Ballots:    []string{"1,3,4,2", "1,,2,", "1,2,3,", "3,2,1,4", ",,1,2", ",,,1"},
	}
}

func TestTrailRecordsEvents(t *testing.T) {
	trail := NewTrail(models.ProtocolIR, "primary.csv")
	_, err := uuid.Parse(trail.ID())
	require.NoError(t, err)

	_, err = tabulate.Run(irElection(), tabulate.WithRecorder(trail))
	require.NoError(t, err)

	events := trail.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, tabulate.EventInitialCount, events[0].Kind)
	assert.Equal(t, tabulate.EventResult, events[len(events)-1].Kind)

	entries := trail.Entries()
	require.Len(t, entries, len(events))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Seq)
		assert.Equal(t, string(events[i].Kind), e.Kind)
	}
}

func TestRender(t *testing.T) {
	trail := NewTrail(models.ProtocolIR, "primary.csv")
	_, err := tabulate.Run(irElection(), tabulate.WithRecorder(trail))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, trail.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, trail.ID())
	assert.Contains(t, out, "Voting protocol: Instant Runoff (IR)")
	assert.Contains(t, out, "Source: primary.csv")
	assert.Contains(t, out, "== Initial count ==")
	assert.Contains(t, out, "1st round: Elimination")
	assert.Contains(t, out, "1st round: Redistribution")
	assert.Contains(t, out, "0 (Eliminated)")
	assert.Contains(t, out, "Winning candidate is Rosen (D) with 3 votes")
}

func TestRenderPartyTable(t *testing.T) {
	trail := NewTrail(models.ProtocolOPL, "")
	_, err := tabulate.Run(tabulate.Election{
		Protocol:   models.ProtocolOPL,
		Candidates: "Pike (D), Foster (D), Deutsch (R)",
		Seats:      2,
		Ballots:    []string{"1,,", "1,,", ",1,", ",,1"},
	}, tabulate.WithRecorder(trail), tabulate.WithTieBreaker(tiebreak.First))
	require.NoError(t, err)

	out, err := trail.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Party")
	assert.Contains(t, string(out), "Remaining")
	assert.Contains(t, string(out), "75%")
	assert.NotContains(t, string(out), "Source:")
}

func TestWriteFileOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_file.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	trail := NewTrail(models.ProtocolIR, "primary.csv")
	_, err := tabulate.Run(irElection(), tabulate.WithRecorder(trail))
	require.NoError(t, err)

	require.NoError(t, trail.WriteFile(path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Election audit "))

	assert.ErrorIs(t, trail.WriteFile(path), ErrSealed)
}

func TestWriteFileRetryAfterFailure(t *testing.T) {
	dir := t.TempDir()

	trail := NewTrail(models.ProtocolIR, "primary.csv")
	_, err := tabulate.Run(irElection(), tabulate.WithRecorder(trail))
	require.NoError(t, err)

	err = trail.WriteFile(filepath.Join(dir, "missing", "audit_file.txt"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSealed)

	path := filepath.Join(dir, "audit_file.txt")
	require.NoError(t, trail.WriteFile(path))
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.ErrorIs(t, trail.WriteFile(path), ErrSealed)
}

func TestWriteSummary(t *testing.T) {
	tests := []struct {
		name     string
		election tabulate.Election
		contains []string
	}{
		{
			name:     "instant runoff",
			election: irElection(),
			contains: []string{"Instant Runoff election, 6 ballots", "Winning candidate is Rosen from the D party", "0 (Eliminated)"},
		},
		{
			name: "open party list",
			election: tabulate.Election{
				Protocol:   models.ProtocolOPL,
				Candidates: "Pike (D), Foster (D), Deutsch (R), Borg (R), Jones (R), Smith (I)",
				Seats:      3,
				Ballots:    []string{"1,,,,,", "1,,,,,", "1,,,,,", ",1,,,,", ",1,,,,", ",,,1,,", ",,,1,,", ",,,,1,", ",,,,,1"},
			},
			contains: []string{"quota 3", "The D party has won the election with 5 votes and 2 seats", "Winning candidate is Pike"},
		},
		{
			name: "multiple preferential ordering",
			election: tabulate.Election{
				Protocol:   models.ProtocolMPO,
				Candidates: "[Pike, D], [Foster, D], [Deutsch, R]",
				Seats:      3,
				Ballots:    []string{"1,,", "1,,", "1,,", ",1,", ",1,", ",,1"},
			},
			contains: []string{"3 candidates won seats", "1st\tPike (D)", "3rd\tDeutsch (R)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tabulate.Run(tt.election)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, res))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
