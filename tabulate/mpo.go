// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/normalize"
	"github.com/danielhkuo/vote-easy/tiebreak"
)

// MPOResult is the outcome of a Multiple Preferential Ordering tabulation
type MPOResult struct {
	// Candidates in descriptor order
	Candidates []*models.Candidate `json:"candidates"`
	// Ranking is Candidates sorted by votes, descending and stable
	Ranking   []*models.Candidate `json:"ranking"`
	Elected   []*models.Candidate `json:"elected"`
	TieGroups []TieRecord         `json:"tie_groups,omitempty"`
	Ballots   int                 `json:"ballot_count"`
	Seats     int                 `json:"seat_count"`
}

func (r *MPOResult) Protocol() models.Protocol { return models.ProtocolMPO }

func (r *MPOResult) Winners() []*models.Candidate { return r.Elected }

func (r *MPOResult) BallotCount() int { return r.Ballots }

func (r *MPOResult) SeatCount() int { return r.Seats }

// MPO tabulates a Multiple Preferential Ordering election
type MPO struct {
	opts       options
	candidates []*models.Candidate
	marks      []int
	seats      int
	done       bool
}

func NewMPO(descriptor string, lines []string, seats int, opts ...Option) (*MPO, error) {
	if seats < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSeats, seats)
	}
	candidates, err := normalize.Candidates(descriptor)
	if err != nil {
		return nil, err
	}
	marks, err := normalize.SingleMarks(len(candidates), lines)
	if err != nil {
		return nil, err
	}

	return &MPO{
		opts:       buildOptions(opts),
		candidates: candidates,
		marks:      marks,
		seats:      seats,
	}, nil
}

func (t *MPO) Protocol() models.Protocol { return models.ProtocolMPO }

// Candidates returns the candidates in descriptor order
func (t *MPO) Candidates() []*models.Candidate { return t.candidates }

// Tabulate ranks candidates by votes and walks the ranking pairwise,
// seating each candidate that strictly beats its successor. Runs of equal
// counts are seated by tie-breaker draws. A candidate with no votes never
// wins a seat.
func (t *MPO) Tabulate() (Result, error) {
	if t.done {
		return nil, ErrAlreadyTabulated
	}
	t.done = true

	for _, m := range t.marks {
		t.candidates[m].AddVote()
	}

	res := &MPOResult{
		Candidates: t.candidates,
		Ranking:    slices.Clone(t.candidates),
		Ballots:    len(t.marks),
		Seats:      t.seats,
	}
	slices.SortStableFunc(res.Ranking, func(a, b *models.Candidate) int {
		return cmp.Compare(b.Votes, a.Votes)
	})

	t.opts.recorder.Record(Event{
		Kind:      EventInitialCount,
		Message:   "Initial vote calculation results",
		Standings: candidateStandings(res.Ranking),
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})

	remaining := t.seats
	ranking := res.Ranking
	for i := 0; i < len(ranking)-1 && remaining > 0; i++ {
		c, next := ranking[i], ranking[i+1]
		if c.Seats > 0 {
			continue
		}
		if c.Votes == 0 {
			break
		}
		if c.Votes > next.Votes {
			t.seat(res, c, fmt.Sprintf("1 seat allocated to %s since they have more votes than the candidate after them", c.Name))
			remaining--
			continue
		}
		remaining = t.seatTiedGroup(res, tiedRun(ranking[i:]), remaining)
	}

	if last := ranking[len(ranking)-1]; remaining > 0 && last.Seats == 0 && last.Votes > 0 {
		t.seat(res, last, fmt.Sprintf("1 last seat allocated to the last remaining candidate %s", last.Name))
	}

	t.opts.recorder.Record(Event{
		Kind:      EventResult,
		Message:   fmt.Sprintf("Seat winners: %s", strings.Join(candidateNames(res.Elected), ", ")),
		Standings: candidateStandings(res.Ranking),
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})
	t.opts.logger.Debug("multiple preferential ordering resolved",
		"elected", candidateNames(res.Elected),
		"seats", res.Seats,
		"ties", len(res.TieGroups),
	)

	return res, nil
}

// tiedRun returns the leading run of unseated candidates sharing the first
// candidate's nonzero vote count
func tiedRun(ranking []*models.Candidate) []*models.Candidate {
	votes := ranking[0].Votes
	var group []*models.Candidate
	for _, c := range ranking {
		if c.Votes == 0 || c.Votes != votes {
			break
		}
		if c.Seats == 0 {
			group = append(group, c)
		}
	}
	return group
}

// seatTiedGroup draws seat winners out of group until it is empty or no
// seats remain, and returns the seats still open
func (t *MPO) seatTiedGroup(res *MPOResult, group []*models.Candidate, remaining int) int {
	for remaining > 0 && len(group) > 0 {
		if len(group) == 1 {
			t.seat(res, group[0], fmt.Sprintf("%s wins 1 seat since they are no longer tied with any other candidate", group[0].Name))
			return remaining - 1
		}

		chosen, idx := tiebreak.Choose(t.opts.tieBreaker, group)
		tie := TieRecord{Round: len(res.Elected) + 1, Tied: candidateNames(group), Chosen: chosen.Name}
		res.TieGroups = append(res.TieGroups, tie)
		t.opts.recorder.Record(Event{
			Kind:    EventTie,
			Round:   tie.Round,
			Message: fmt.Sprintf("%s tied with %d votes; %s wins the tie-breaker and 1 seat", strings.Join(tie.Tied, ", "), chosen.Votes, chosen.Name),
			Tied:    tie.Tied,
			Chosen:  chosen.Name,
			Ballots: res.Ballots,
			Seats:   res.Seats,
		})

		t.seat(res, chosen, "")
		group = slices.Delete(group, idx, idx+1)
		remaining--
	}
	return remaining
}

// seat awards c one seat and records it. An empty message skips the
// allocation event, for seats already announced by a tie event.
func (t *MPO) seat(res *MPOResult, c *models.Candidate, msg string) {
	c.AwardSeat()
	res.Elected = append(res.Elected, c)
	if msg == "" {
		return
	}
	t.opts.recorder.Record(Event{
		Kind:      EventSeatAllocation,
		Round:     len(res.Elected),
		Message:   msg,
		Chosen:    c.Name,
		Standings: candidateStandings(res.Ranking),
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})
}
