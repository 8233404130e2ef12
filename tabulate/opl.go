// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/normalize"
	"github.com/danielhkuo/vote-easy/tiebreak"
)

// OPLRoundKind names the kind of seat allocation round
type OPLRoundKind string

const (
	RoundQuota     OPLRoundKind = "quota"
	RoundAllVotes  OPLRoundKind = "all_votes"
	RoundRemainder OPLRoundKind = "remainder"
)

// SeatAward is a number of seats given to one party in one round
type SeatAward struct {
	Party string `json:"party"`
	Seats int    `json:"seats"`
}

// OPLRound is one seat allocation round
type OPLRound struct {
	Number    int          `json:"number"`
	Kind      OPLRoundKind `json:"kind"`
	Awards    []SeatAward  `json:"awards"`
	Standings []Standing   `json:"standings"`
}

// TieRecord documents one tie-breaker draw
type TieRecord struct {
	Round  int      `json:"round,omitempty"`
	Tied   []string `json:"tied"`
	Chosen string   `json:"chosen"`
}

// OPLResult is the outcome of an Open Party List tabulation.
// Party.InitialVotes holds the frozen pre-allocation totals.
type OPLResult struct {
	Parties          []*models.Party   `json:"parties"`
	Quota            int               `json:"quota"`
	Ballots          int               `json:"ballot_count"`
	Seats            int               `json:"seat_count"`
	Rounds           []OPLRound        `json:"rounds"`
	RemainderTies    []TieRecord       `json:"remainder_ties,omitempty"`
	PartyTie         *TieRecord        `json:"party_tie,omitempty"`
	CandidateTie     *TieRecord        `json:"candidate_tie,omitempty"`
	WinningParty     *models.Party     `json:"winning_party"`
	WinningCandidate *models.Candidate `json:"winning_candidate"`
}

func (r *OPLResult) Protocol() models.Protocol { return models.ProtocolOPL }

func (r *OPLResult) Winners() []*models.Candidate {
	if r.WinningCandidate == nil {
		return nil
	}
	return []*models.Candidate{r.WinningCandidate}
}

func (r *OPLResult) BallotCount() int { return r.Ballots }

func (r *OPLResult) SeatCount() int { return r.Seats }

// OPL tabulates an Open Party List election
type OPL struct {
	opts       options
	candidates []*models.Candidate
	parties    []*models.Party
	marks      []int
	seats      int
	done       bool
}

func NewOPL(descriptor string, lines []string, seats int, opts ...Option) (*OPL, error) {
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

	return &OPL{
		opts:       buildOptions(opts),
		candidates: candidates,
		parties:    normalize.Parties(candidates),
		marks:      marks,
		seats:      seats,
	}, nil
}

func (t *OPL) Protocol() models.Protocol { return models.ProtocolOPL }

// Parties returns the parties in first-seen descriptor order
func (t *OPL) Parties() []*models.Party { return t.parties }

// Tabulate aggregates votes, allocates seats by quota and largest remainder,
// then picks the winning party and its most popular candidate
func (t *OPL) Tabulate() (Result, error) {
	if t.done {
		return nil, ErrAlreadyTabulated
	}
	t.done = true

	if len(t.marks) == 0 {
		return nil, ErrNoBallots
	}

	byName := make(map[string]*models.Party, len(t.parties))
	for _, p := range t.parties {
		byName[p.Name] = p
	}
	for _, m := range t.marks {
		c := t.candidates[m]
		c.AddVote()
		byName[c.Party].AddVote()
	}
	for _, p := range t.parties {
		p.Freeze()
	}

	res := &OPLResult{
		Parties: t.parties,
		Quota:   (len(t.marks) + t.seats - 1) / t.seats,
		Ballots: len(t.marks),
		Seats:   t.seats,
	}
	t.opts.recorder.Record(Event{
		Kind:      EventInitialCount,
		Message:   "Statistics before seat allocation",
		Standings: partyStandings(t.parties),
		Parties:   true,
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})

	remaining := t.seats - t.allocateWholeSeats(res)
	received := make(map[*models.Party]bool, len(t.parties))
	for round := 2; remaining > 0; round++ {
		t.allocateRemainderSeat(res, round, received)
		remaining--
	}

	t.pickWinningParty(res)
	t.pickWinningCandidate(res)

	t.opts.recorder.Record(Event{
		Kind: EventResult,
		Message: fmt.Sprintf("The %s party won with %d votes and %d seats; winning candidate is %s with %d votes",
			res.WinningParty.Name, res.WinningParty.InitialVotes, res.WinningParty.Seats,
			res.WinningCandidate, res.WinningCandidate.Votes),
		Chosen:    res.WinningCandidate.Name,
		Standings: candidateStandings(res.WinningParty.Candidates),
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})
	t.opts.logger.Debug("open party list resolved",
		"party", res.WinningParty.Name,
		"candidate", res.WinningCandidate.Name,
		"quota", res.Quota,
		"rounds", len(res.Rounds),
	)

	return res, nil
}

// soleParty returns the only party with votes, if exactly one has any
func (t *OPL) soleParty() *models.Party {
	var sole *models.Party
	for _, p := range t.parties {
		if p.Votes == 0 {
			continue
		}
		if sole != nil {
			return nil
		}
		sole = p
	}
	return sole
}

// allocateWholeSeats runs the first round and returns the seats it gave out.
// A party holding every ballot takes every seat without quota division.
func (t *OPL) allocateWholeSeats(res *OPLResult) int {
	rnd := OPLRound{Number: 1, Kind: RoundQuota}
	allocated := 0

	if sole := t.soleParty(); sole != nil {
		rnd.Kind = RoundAllVotes
		sole.AwardSeats(t.seats)
		sole.SetRemainingVotes(0)
		rnd.Awards = append(rnd.Awards, SeatAward{Party: sole.Name, Seats: t.seats})
		allocated = t.seats
	} else {
		for _, p := range t.parties {
			won := p.Votes / res.Quota
			p.AwardSeats(won)
			p.SetRemainingVotes(p.Votes % res.Quota)
			if won > 0 {
				rnd.Awards = append(rnd.Awards, SeatAward{Party: p.Name, Seats: won})
			}
			allocated += won
		}
	}

	rnd.Standings = partyStandings(t.parties)
	res.Rounds = append(res.Rounds, rnd)

	msg := fmt.Sprintf("Whole seats allocated with a quota of %d votes per seat", res.Quota)
	if rnd.Kind == RoundAllVotes {
		msg = fmt.Sprintf("The %s party received every ballot and takes all %d seats", rnd.Awards[0].Party, t.seats)
	}
	t.opts.recorder.Record(Event{
		Kind:      EventSeatAllocation,
		Round:     1,
		Message:   msg,
		Standings: rnd.Standings,
		Parties:   true,
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})

	return allocated
}

// allocateRemainderSeat gives one seat to the party with the highest
// remaining votes among the parties that have not yet received a remainder
// seat. Once every party has received one, a new pass starts.
func (t *OPL) allocateRemainderSeat(res *OPLResult, round int, received map[*models.Party]bool) {
	var eligible []*models.Party
	for _, p := range t.parties {
		if !received[p] {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		clear(received)
		eligible = t.parties
	}

	highest := eligible[0].Votes
	for _, p := range eligible[1:] {
		highest = max(highest, p.Votes)
	}
	var leaders []*models.Party
	for _, p := range eligible {
		if p.Votes == highest {
			leaders = append(leaders, p)
		}
	}

	chosen, _ := tiebreak.Choose(t.opts.tieBreaker, leaders)
	if len(leaders) > 1 {
		tie := TieRecord{Round: round, Tied: partyNames(leaders), Chosen: chosen.Name}
		res.RemainderTies = append(res.RemainderTies, tie)
		t.opts.recorder.Record(Event{
			Kind:    EventTie,
			Round:   round,
			Message: fmt.Sprintf("%s tied with %d remaining votes; the %s party wins the remainder seat", strings.Join(tie.Tied, ", "), highest, chosen.Name),
			Tied:    tie.Tied,
			Chosen:  chosen.Name,
			Ballots: res.Ballots,
			Seats:   res.Seats,
		})
	}
	chosen.AwardSeats(1)
	received[chosen] = true

	rnd := OPLRound{
		Number:    round,
		Kind:      RoundRemainder,
		Awards:    []SeatAward{{Party: chosen.Name, Seats: 1}},
		Standings: partyStandings(t.parties),
	}
	res.Rounds = append(res.Rounds, rnd)

	t.opts.recorder.Record(Event{
		Kind:      EventSeatAllocation,
		Round:     round,
		Message:   fmt.Sprintf("Remainder seat allocated to the %s party", chosen.Name),
		Chosen:    chosen.Name,
		Standings: rnd.Standings,
		Parties:   true,
		Ballots:   res.Ballots,
		Seats:     res.Seats,
	})
}

func (t *OPL) pickWinningParty(res *OPLResult) {
	most := t.parties[0].Seats
	for _, p := range t.parties[1:] {
		most = max(most, p.Seats)
	}
	var leaders []*models.Party
	for _, p := range t.parties {
		if p.Seats == most {
			leaders = append(leaders, p)
		}
	}

	res.WinningParty, _ = tiebreak.Choose(t.opts.tieBreaker, leaders)
	if len(leaders) > 1 {
		res.PartyTie = &TieRecord{Tied: partyNames(leaders), Chosen: res.WinningParty.Name}
		t.opts.recorder.Record(Event{
			Kind:    EventTie,
			Message: fmt.Sprintf("%s tied with %d seats; the %s party wins the tie-breaker", strings.Join(res.PartyTie.Tied, ", "), most, res.WinningParty.Name),
			Tied:    res.PartyTie.Tied,
			Chosen:  res.WinningParty.Name,
			Ballots: res.Ballots,
			Seats:   res.Seats,
		})
	}
}

func (t *OPL) pickWinningCandidate(res *OPLResult) {
	members := res.WinningParty.Candidates
	most := members[0].Votes
	for _, c := range members[1:] {
		most = max(most, c.Votes)
	}
	var leaders []*models.Candidate
	for _, c := range members {
		if c.Votes == most {
			leaders = append(leaders, c)
		}
	}

	res.WinningCandidate, _ = tiebreak.Choose(t.opts.tieBreaker, leaders)
	if len(leaders) > 1 {
		res.CandidateTie = &TieRecord{Tied: candidateNames(leaders), Chosen: res.WinningCandidate.Name}
		t.opts.recorder.Record(Event{
			Kind:    EventTie,
			Message: fmt.Sprintf("%s tied with %d votes; %s wins the tie-breaker", strings.Join(res.CandidateTie.Tied, ", "), most, res.WinningCandidate.Name),
			Tied:    res.CandidateTie.Tied,
			Chosen:  res.WinningCandidate.Name,
			Ballots: res.Ballots,
			Seats:   res.Seats,
		})
	}
}
