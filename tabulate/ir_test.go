// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/vote-easy/normalize"
	"github.com/danielhkuo/vote-easy/tiebreak"
)

func runIR(t *testing.T, descriptor string, ballots []string, opts ...Option) *IRResult {
	t.Helper()
	tab, err := NewIR(descriptor, ballots, opts...)
	require.NoError(t, err)
	res, err := tab.Tabulate()
	require.NoError(t, err)
	return res.(*IRResult)
}

func TestIRFirstRoundMajority(t *testing.T) {
	res := runIR(t, "Rosen (D), Kleinberg (R), Chou (I), Royce (L)", []string{
		"1,2,3,4",
		"1,,2,",
		"1,3,2,4",
		"1,,,",
		"2,1,,",
		",,1,2",
	}, WithTieBreaker(noTies(t)))

	require.NotNil(t, res.Winner)
	assert.Equal(t, "Rosen", res.Winner.Name)
	assert.Equal(t, 4, res.Winner.Votes)
	assert.Equal(t, ResolvedByMajority, res.Resolution)
	assert.Empty(t, res.Rounds)
	assert.Equal(t, 6, res.BallotCount())
	assert.Equal(t, 1, res.SeatCount())
}

func TestIRZeroVoteEliminationAndExhaustion(t *testing.T) {
	res := runIR(t, "Ames (D), Baker (R), Cole (I), Dunn (L)", []string{
		"1,,,",
		"1,,,",
		"1,,,",
		",1,,",
		",1,,",
		",,1,2",
	}, WithTieBreaker(noTies(t)))

	require.Len(t, res.Rounds, 1)
	rnd := res.Rounds[0]
	assert.Equal(t, []string{"Dunn"}, rnd.ZeroVoteEliminated)
	assert.Equal(t, []string{"Cole"}, rnd.Eliminated)
	assert.Equal(t, 1, rnd.ExhaustedBallots)
	assert.Equal(t, 5, rnd.ActiveBallots)

	assert.Equal(t, "Ames", res.Winner.Name)
	assert.Equal(t, 3, res.Winner.Votes)
	assert.Equal(t, 5, res.ActiveBallots)
	assert.Equal(t, 6, res.Ballots)

	// Eliminated candidates keep their counts for reporting
	assert.True(t, res.Candidates[2].Eliminated)
	assert.Equal(t, 1, res.Candidates[2].Votes)
}

func TestIREmptyBallotsNeverCount(t *testing.T) {
	tab, err := NewIR("Rosen (D), Kleinberg (R)", []string{"1,", ",", ",1", "1,2"})
	require.NoError(t, err)
	assert.Equal(t, 3, tab.ActiveBallots())

	res, err := tab.Tabulate()
	require.NoError(t, err)
	ir := res.(*IRResult)
	assert.Equal(t, "Rosen", ir.Winner.Name)
	assert.Equal(t, 4, ir.Ballots)
	assert.Equal(t, 3, ir.ActiveBallots)
}

func TestIRNoBallots(t *testing.T) {
	tab, err := NewIR("Rosen (D), Kleinberg (R)", []string{",", ","})
	require.NoError(t, err)
	_, err = tab.Tabulate()
	assert.ErrorIs(t, err, ErrNoBallots)
}

// A ballot without a first choice must not hand its lowest rank a
// first-round vote
func TestIRRejectsBallotsWithoutFirstChoice(t *testing.T) {
	for _, ballots := range [][]string{
		{"1,,", ",1,", ",,2", ",,2"},
		{"1,,", ",1,", "1,,3"},
	} {
		_, err := NewIR("Ames (P), Baker (Q), Cole (R)", ballots, WithTieBreaker(tiebreak.First))
		assert.ErrorIs(t, err, normalize.ErrMalformedBallot, "ballots %q", ballots)
	}

	res := runIR(t, "Ames (P), Baker (Q), Cole (R)", []string{"1,,", ",1,", "2,,1", "2,,1"}, WithTieBreaker(tiebreak.First))
	assert.Equal(t, "Cole", res.Winner.Name)
	assert.Equal(t, 2, res.FirstRound[2].Votes)
}

func TestIRTies(t *testing.T) {
	t.Run("first round", func(t *testing.T) {
		res := runIR(t, "Rosen (D), Kleinberg (R)", []string{"1,", ",1"}, WithTieBreaker(tiebreak.First))
		assert.Equal(t, "Rosen", res.Winner.Name)
		assert.Equal(t, ResolvedByTie, res.Resolution)
		assert.Equal(t, []string{"Rosen", "Kleinberg"}, res.Tied)
		assert.True(t, res.TiedAtFirstRound())
	})

	t.Run("after redistribution", func(t *testing.T) {
		res := runIR(t, "Ames (D), Baker (R), Cole (I)", []string{
			"1,,",
			"1,,",
			",1,",
			",1,",
			",,1",
		}, WithTieBreaker(tiebreak.Last))
		require.Len(t, res.Rounds, 1)
		assert.Equal(t, 1, res.Rounds[0].ExhaustedBallots)
		assert.Equal(t, "Baker", res.Winner.Name)
		assert.Equal(t, ResolvedByTie, res.Resolution)
		assert.False(t, res.TiedAtFirstRound())
	})

	t.Run("lowest tie keeps one survivor", func(t *testing.T) {
		res := runIR(t, "Ames (D), Baker (R), Cole (I), Dunn (L)", []string{
			"1,,,",
			"1,,,",
			",1,,",
			",2,1,",
			"2,,,1",
		}, WithTieBreaker(tiebreak.First))
		require.Len(t, res.Rounds, 1)
		rnd := res.Rounds[0]
		assert.Equal(t, []string{"Baker", "Cole", "Dunn"}, rnd.TiedForLowest)
		assert.Equal(t, "Baker", rnd.Survivor)
		assert.Equal(t, []string{"Cole", "Dunn"}, rnd.Eliminated)
		assert.Equal(t, 0, rnd.ExhaustedBallots)

		assert.Equal(t, "Ames", res.Winner.Name)
		assert.Equal(t, 3, res.Winner.Votes)
		assert.Equal(t, ResolvedByMajority, res.Resolution)
	})
}

func TestIRRedistributedCounters(t *testing.T) {
	var events []Event
	runIR(t, "Ames (D), Baker (R), Cole (I)", []string{
		"1,,",
		"1,,",
		",1,",
		",1,",
		"2,,1",
	}, WithRecorder(collect(&events)), WithTieBreaker(noTies(t)))

	var redistribution *Event
	for i := range events {
		if events[i].Kind == EventRedistribution {
			redistribution = &events[i]
		}
	}
	require.NotNil(t, redistribution)
	assert.Equal(t, 1, redistribution.Standings[0].Redistributed)
	assert.Equal(t, 3, redistribution.Standings[0].Votes)
	assert.Equal(t, 0, redistribution.Standings[1].Redistributed)
}

// randomRankedBallots builds n ballots over c candidates, each ranking a
// random prefix of a random permutation
func randomRankedBallots(rng *rand.Rand, c, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		cells := make([]string, c)
		perm := rng.Perm(c)
		depth := rng.IntN(c + 1)
		for rank, pos := range perm[:depth] {
			cells[pos] = strconv.Itoa(rank + 1)
		}
		lines[i] = strings.Join(cells, ",")
	}
	return lines
}

func TestIRVoteConservation(t *testing.T) {
	const descriptor = "A (P), B (Q), C (R), D (S), E (T), F (U)"
	for seed := uint64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		c := 6
		ballots := randomRankedBallots(rng, c, 1+rng.IntN(60))

		var events []Event
		tab, err := NewIR(descriptor, ballots,
			WithRecorder(collect(&events)),
			WithTieBreaker(tiebreak.PickFunc(func(n int) int { return rng.IntN(n) })),
		)
		require.NoError(t, err)
		if tab.ActiveBallots() == 0 {
			continue
		}
		_, err = tab.Tabulate()
		require.NoError(t, err, "seed %d", seed)

		prevActive := c + 1
		prevBallots := len(ballots)
		for _, e := range events {
			if e.Standings == nil || e.Kind == EventResult || e.Kind == EventMajority {
				continue
			}
			sum, active := 0, 0
			for _, s := range e.Standings {
				if !s.Eliminated {
					sum += s.Votes
					active++
				}
			}
			assert.Equal(t, e.Ballots, sum, "seed %d round %d", seed, e.Round)

			if e.Kind == EventRedistribution {
				assert.Less(t, active, prevActive, "seed %d round %d", seed, e.Round)
				assert.LessOrEqual(t, e.Ballots, prevBallots, "seed %d round %d", seed, e.Round)
				prevActive, prevBallots = active, e.Ballots
			}
		}
	}
}
