// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import "github.com/danielhkuo/vote-easy/models"

// rankedBallot is a queue of the candidates a voter ranked, first choice at
// the head. The head is the candidate the ballot currently counts for. An
// empty queue is an exhausted ballot.
type rankedBallot struct {
	prefs []*models.Candidate
}

func newRankedBallot(prefs []*models.Candidate) *rankedBallot {
	return &rankedBallot{prefs: prefs}
}

func (b *rankedBallot) leader() *models.Candidate {
	if len(b.prefs) == 0 {
		return nil
	}
	return b.prefs[0]
}

// advance pops eliminated candidates off the head and reports whether an
// active candidate is left to count the ballot for
func (b *rankedBallot) advance() bool {
	for len(b.prefs) > 0 && b.prefs[0].Eliminated {
		b.prefs = b.prefs[1:]
	}
	return len(b.prefs) > 0
}
