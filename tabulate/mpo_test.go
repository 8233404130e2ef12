// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/vote-easy/tiebreak"
)

const mpoDescriptor = "[Pike, D], [Foster, D], [Deutsch, R], [Borg, R], [Jones, R], [Smith, I]"

func runMPO(t *testing.T, descriptor string, ballots []string, seats int, opts ...Option) *MPOResult {
	t.Helper()
	tab, err := NewMPO(descriptor, ballots, seats, opts...)
	require.NoError(t, err)
	res, err := tab.Tabulate()
	require.NoError(t, err)
	return res.(*MPOResult)
}

func TestMPOTrailingCandidate(t *testing.T) {
	res := runMPO(t, "[Pike, D], [Foster, D], [Deutsch, R]", marks(3, 2, 1), 3, WithTieBreaker(noTies(t)))

	assert.Equal(t, []string{"Pike", "Foster", "Deutsch"}, WinnerNames(res))
	assert.Empty(t, res.TieGroups)
	for _, c := range res.Candidates {
		assert.Equal(t, 1, c.Seats, c.Name)
	}
}

func TestMPOTiedGroup(t *testing.T) {
	res := runMPO(t, "[Ames, D], [Baker, R], [Cole, I], [Dunn, L]", marks(2, 2, 2, 1), 2, WithTieBreaker(tiebreak.First))

	assert.Equal(t, []string{"Ames", "Baker"}, WinnerNames(res))
	require.Len(t, res.TieGroups, 2)
	assert.Equal(t, []string{"Ames", "Baker", "Cole"}, res.TieGroups[0].Tied)
	assert.Equal(t, []string{"Baker", "Cole"}, res.TieGroups[1].Tied)
	assert.Equal(t, 0, res.Candidates[2].Seats)
	assert.Equal(t, 0, res.Candidates[3].Seats)
}

func TestMPOLastOfGroupSeatedWithoutDraw(t *testing.T) {
	draws := 0
	tb := tiebreak.PickFunc(func(int) int {
		draws++
		return 0
	})
	res := runMPO(t, "[Ames, D], [Baker, R], [Cole, I]", marks(1, 1, 0), 2, WithTieBreaker(tb))

	assert.Equal(t, []string{"Ames", "Baker"}, WinnerNames(res))
	assert.Equal(t, 1, draws)
	assert.Len(t, res.TieGroups, 1)
}

func TestMPOZeroVotesNeverSeated(t *testing.T) {
	res := runMPO(t, "[Ames, D], [Baker, R], [Cole, I]", marks(1, 0, 0), 3, WithTieBreaker(noTies(t)))

	assert.Equal(t, []string{"Ames"}, WinnerNames(res))
	assert.Equal(t, 0, res.Candidates[1].Seats)
	assert.Equal(t, 0, res.Candidates[2].Seats)
}

func TestMPOStableRanking(t *testing.T) {
	res := runMPO(t, "[Ames, D], [Baker, R], [Cole, I]", marks(1, 2, 1), 1, WithTieBreaker(noTies(t)))

	got := make([]string, len(res.Ranking))
	for i, c := range res.Ranking {
		got[i] = c.Name
	}
	assert.Equal(t, []string{"Baker", "Ames", "Cole"}, got)
	assert.Equal(t, "Ames", res.Candidates[0].Name)
}

func TestMPOSeatBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	tb := tiebreak.PickFunc(func(n int) int { return rng.IntN(n) })

	for trial := range 300 {
		counts := make([]int, 6)
		nonzero := 0
		for i := range counts {
			counts[i] = rng.IntN(4)
			if counts[i] > 0 {
				nonzero++
			}
		}
		seats := 1 + rng.IntN(6)

		res := runMPO(t, mpoDescriptor, marks(counts...), seats, WithTieBreaker(tb))

		sum := 0
		for _, c := range res.Candidates {
			sum += c.Seats
			assert.LessOrEqual(t, c.Seats, 1)
		}
		assert.LessOrEqual(t, sum, seats, "trial %d", trial)
		assert.Equal(t, min(seats, nonzero), sum, "trial %d counts %v seats %d", trial, counts, seats)
		assert.Len(t, res.Elected, sum)
	}
}

func TestMPOTieFairness(t *testing.T) {
	const trials = 1000
	wins := make(map[string]int)
	for range trials {
		res := runMPO(t, mpoDescriptor, marks(1, 1, 1, 1, 1, 1), 1)
		require.Len(t, res.Elected, 1)
		wins[res.Elected[0].Name]++
	}

	for _, name := range []string{"Pike", "Foster", "Deutsch", "Borg", "Jones", "Smith"} {
		rate := float64(wins[name]) / trials
		assert.InDelta(t, 1.0/6, rate, 0.05, "%s won %d of %d", name, wins[name], trials)
	}
}
