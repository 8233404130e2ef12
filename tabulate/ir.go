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

// IRResolution says how an Instant Runoff election ended
type IRResolution string

const (
	ResolvedByMajority IRResolution = "majority"
	ResolvedByTie      IRResolution = "tie"
)

// IRRound is one redistribution round: who went out and where their
// ballots ended up
type IRRound struct {
	Number             int        `json:"number"`
	ZeroVoteEliminated []string   `json:"zero_vote_eliminated,omitempty"`
	TiedForLowest      []string   `json:"tied_for_lowest,omitempty"`
	Survivor           string     `json:"survivor,omitempty"`
	Eliminated         []string   `json:"eliminated"`
	ExhaustedBallots   int        `json:"exhausted_ballots"`
	ActiveBallots      int        `json:"active_ballots"`
	Standings          []Standing `json:"standings"`
}

// IRResult is the outcome of an Instant Runoff tabulation
type IRResult struct {
	Candidates    []*models.Candidate `json:"candidates"`
	FirstRound    []Standing          `json:"first_round"`
	Rounds        []IRRound           `json:"rounds"`
	Winner        *models.Candidate   `json:"winner"`
	Resolution    IRResolution        `json:"resolution"`
	Tied          []string            `json:"tied,omitempty"`
	Ballots       int                 `json:"ballot_count"`
	ActiveBallots int                 `json:"active_ballots"`
}

func (r *IRResult) Protocol() models.Protocol { return models.ProtocolIR }

func (r *IRResult) Winners() []*models.Candidate {
	if r.Winner == nil {
		return nil
	}
	return []*models.Candidate{r.Winner}
}

func (r *IRResult) BallotCount() int { return r.Ballots }

func (r *IRResult) SeatCount() int { return 1 }

// TiedAtFirstRound reports whether the election was decided by a tie-breaker
// before any redistribution took place
func (r *IRResult) TiedAtFirstRound() bool {
	return r.Resolution == ResolvedByTie && len(r.Rounds) == 0
}

// IR tabulates an Instant Runoff election
type IR struct {
	opts       options
	candidates []*models.Candidate
	ballots    []*rankedBallot
	cast       int
	done       bool
}

// NewIR normalizes the descriptor and ranked ballot lines. Ballots that rank
// nobody are counted as cast but never enter the working set.
func NewIR(descriptor string, lines []string, opts ...Option) (*IR, error) {
	candidates, err := normalize.Candidates(descriptor)
	if err != nil {
		return nil, err
	}
	ranked, err := normalize.RankedBallots(candidates, lines)
	if err != nil {
		return nil, err
	}

	ballots := make([]*rankedBallot, 0, len(ranked))
	for _, prefs := range ranked {
		if len(prefs) == 0 {
			continue
		}
		ballots = append(ballots, newRankedBallot(prefs))
	}

	return &IR{
		opts:       buildOptions(opts),
		candidates: candidates,
		ballots:    ballots,
		cast:       len(lines),
	}, nil
}

func (t *IR) Protocol() models.Protocol { return models.ProtocolIR }

// Candidates returns the candidates in descriptor order
func (t *IR) Candidates() []*models.Candidate { return t.candidates }

// ActiveBallots is the size of the working ballot set
func (t *IR) ActiveBallots() int { return len(t.ballots) }

// Tabulate counts first choices, then eliminates and redistributes until a
// candidate holds a majority of the working ballots or every remaining
// candidate is tied.
func (t *IR) Tabulate() (Result, error) {
	if t.done {
		return nil, ErrAlreadyTabulated
	}
	t.done = true

	res := &IRResult{Candidates: t.candidates, Ballots: t.cast}

	for _, b := range t.ballots {
		b.leader().AddVote()
	}
	res.FirstRound = candidateStandings(t.candidates)
	t.opts.recorder.Record(Event{
		Kind:      EventInitialCount,
		Message:   "Statistics after first round of vote calculations",
		Standings: res.FirstRound,
		Ballots:   len(t.ballots),
	})

	if len(t.ballots) == 0 {
		return nil, ErrNoBallots
	}

	if w := t.majority(); w != nil {
		t.resolveMajority(res, w, 0)
		return res, nil
	}

	for round := 1; ; round++ {
		if t.tied() {
			t.resolveTie(res, round-1)
			return res, nil
		}

		rnd, err := t.redistribute(round)
		if err != nil {
			return nil, err
		}
		res.Rounds = append(res.Rounds, rnd)

		if w := t.majority(); w != nil {
			t.resolveMajority(res, w, round)
			return res, nil
		}
	}
}

func (t *IR) active() []*models.Candidate {
	var out []*models.Candidate
	for _, c := range t.candidates {
		if !c.Eliminated {
			out = append(out, c)
		}
	}
	return out
}

// majority returns the active candidate holding more than half of the
// working ballots, if any
func (t *IR) majority() *models.Candidate {
	for _, c := range t.candidates {
		if !c.Eliminated && 2*c.Votes > len(t.ballots) {
			return c
		}
	}
	return nil
}

// contenders are the active candidates with at least one vote
func (t *IR) contenders() []*models.Candidate {
	var out []*models.Candidate
	for _, c := range t.candidates {
		if !c.Eliminated && c.Votes > 0 {
			out = append(out, c)
		}
	}
	return out
}

// tied reports whether every active candidate with votes has the same count
func (t *IR) tied() bool {
	contenders := t.contenders()
	if len(contenders) == 0 {
		return false
	}
	for _, c := range contenders[1:] {
		if c.Votes != contenders[0].Votes {
			return false
		}
	}
	return true
}

func (t *IR) resolveMajority(res *IRResult, winner *models.Candidate, round int) {
	res.Winner = winner
	res.Resolution = ResolvedByMajority
	res.ActiveBallots = len(t.ballots)

	t.opts.recorder.Record(Event{
		Kind:      EventMajority,
		Round:     round,
		Message:   fmt.Sprintf("%s holds a majority with %d of %d ballots", winner, winner.Votes, len(t.ballots)),
		Chosen:    winner.Name,
		Standings: candidateStandings(t.candidates),
		Ballots:   len(t.ballots),
	})
	t.recordResult(res, round)
}

func (t *IR) resolveTie(res *IRResult, round int) {
	tied := t.contenders()
	winner, _ := tiebreak.Choose(t.opts.tieBreaker, tied)

	res.Winner = winner
	res.Resolution = ResolvedByTie
	res.Tied = candidateNames(tied)
	res.ActiveBallots = len(t.ballots)

	t.opts.recorder.Record(Event{
		Kind:    EventTie,
		Round:   round,
		Message: fmt.Sprintf("%s tied with %d votes each; %s wins the tie-breaker", strings.Join(res.Tied, ", "), winner.Votes, winner.Name),
		Tied:    res.Tied,
		Chosen:  winner.Name,
		Ballots: len(t.ballots),
	})
	t.recordResult(res, round)
}

func (t *IR) recordResult(res *IRResult, round int) {
	t.opts.recorder.Record(Event{
		Kind:      EventResult,
		Round:     round,
		Message:   fmt.Sprintf("Winning candidate is %s with %d votes", res.Winner, res.Winner.Votes),
		Chosen:    res.Winner.Name,
		Standings: candidateStandings(t.candidates),
		Ballots:   len(t.ballots),
	})
	t.opts.logger.Debug("instant runoff resolved",
		"winner", res.Winner.Name,
		"resolution", res.Resolution,
		"rounds", len(res.Rounds),
	)
}

// redistribute runs one elimination round. Zero-vote candidates go out
// unconditionally; of the rest, everyone at the lowest count goes out except
// one survivor picked by the tie-breaker when several share it. Ballots led
// by an eliminated candidate move to their next active choice or are
// dropped for good.
func (t *IR) redistribute(round int) (IRRound, error) {
	rnd := IRRound{Number: round}

	var remaining []*models.Candidate
	for _, c := range t.active() {
		if c.Votes == 0 {
			c.Eliminate()
			rnd.ZeroVoteEliminated = append(rnd.ZeroVoteEliminated, c.Name)
			t.opts.recorder.Record(Event{
				Kind:    EventElimination,
				Round:   round,
				Message: fmt.Sprintf("Candidate %s has been eliminated since they received 0 votes", c.Name),
				Chosen:  c.Name,
				Ballots: len(t.ballots),
			})
			continue
		}
		remaining = append(remaining, c)
	}
	if len(remaining) == 0 {
		return rnd, fmt.Errorf("round %d: no candidate holds a vote", round)
	}

	lowest := remaining[0].Votes
	for _, c := range remaining[1:] {
		lowest = min(lowest, c.Votes)
	}
	var out []*models.Candidate
	for _, c := range remaining {
		if c.Votes == lowest {
			out = append(out, c)
		}
	}

	if len(out) > 1 {
		survivor, idx := tiebreak.Choose(t.opts.tieBreaker, out)
		rnd.TiedForLowest = candidateNames(out)
		rnd.Survivor = survivor.Name
		out = append(out[:idx:idx], out[idx+1:]...)

		t.opts.recorder.Record(Event{
			Kind:    EventTie,
			Round:   round,
			Message: fmt.Sprintf("%s tied for the lowest votes; %s wins the tie-breaker and stays in", strings.Join(rnd.TiedForLowest, ", "), survivor.Name),
			Tied:    rnd.TiedForLowest,
			Chosen:  survivor.Name,
			Ballots: len(t.ballots),
		})
	}
	if len(out) == 0 || len(out) == len(remaining) {
		return rnd, fmt.Errorf("round %d: elimination would not shrink the field", round)
	}

	// Flag everyone first so no ballot lands on a candidate leaving this round
	for _, c := range out {
		c.Eliminate()
		rnd.Eliminated = append(rnd.Eliminated, c.Name)
	}

	kept := t.ballots[:0]
	for _, b := range t.ballots {
		if !b.leader().Eliminated {
			kept = append(kept, b)
			continue
		}
		if !b.advance() {
			rnd.ExhaustedBallots++
			continue
		}
		b.leader().AddRedistributedVote()
		kept = append(kept, b)
	}
	clear(t.ballots[len(kept):])
	t.ballots = kept

	rnd.ActiveBallots = len(t.ballots)
	rnd.Standings = candidateStandings(t.candidates)

	t.opts.recorder.Record(Event{
		Kind:      EventRedistribution,
		Round:     round,
		Message:   fmt.Sprintf("Eliminated this round: %s", strings.Join(rnd.Eliminated, ", ")),
		Tied:      rnd.TiedForLowest,
		Chosen:    rnd.Survivor,
		Standings: rnd.Standings,
		Ballots:   len(t.ballots),
	})
	t.opts.logger.Debug("redistribution round complete",
		"round", round,
		"eliminated", rnd.Eliminated,
		"exhausted", rnd.ExhaustedBallots,
		"active_ballots", rnd.ActiveBallots,
	)

	for _, c := range t.candidates {
		if !c.Eliminated {
			c.ResetRedistributed()
		}
	}

	return rnd, nil
}
