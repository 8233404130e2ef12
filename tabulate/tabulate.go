// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/tiebreak"
)

var (
	ErrUnknownProtocol  = errors.New("unknown voting protocol")
	ErrInvalidSeats     = errors.New("seat count must be at least 1")
	ErrNoBallots        = errors.New("no valid ballots cast")
	ErrAlreadyTabulated = errors.New("election already tabulated")
)

// Election is the normalized input handed over by ingestion: the protocol
// tag, the candidate descriptor line, the seat count (OPL and MPO) and one
// raw string per ballot.
type Election struct {
	Protocol   models.Protocol
	Candidates string
	Seats      int
	Ballots    []string
}

// Tabulator runs one protocol to completion. Each instance owns its
// candidates, parties and ballots and can tabulate only once.
type Tabulator interface {
	Protocol() models.Protocol
	Tabulate() (Result, error)
}

// Result is what every protocol exposes to reporting
type Result interface {
	Protocol() models.Protocol
	// Winners lists the elected candidates in the order they won
	Winners() []*models.Candidate
	// BallotCount is the number of ballots cast
	BallotCount() int
	// SeatCount is the number of seats filled (1 for IR)
	SeatCount() int
}

type options struct {
	tieBreaker tiebreak.TieBreaker
	recorder   Recorder
	logger     *slog.Logger
}

// Option configures a tabulator
type Option func(*options)

// WithTieBreaker replaces the crypto/rand tie-breaker
func WithTieBreaker(tb tiebreak.TieBreaker) Option {
	return func(o *options) {
		o.tieBreaker = tb
	}
}

// WithRecorder sends every tabulation event to r
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{
		tieBreaker: tiebreak.Secure{},
		recorder:   nopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the tabulator matching the election's protocol tag
func New(e Election, opts ...Option) (Tabulator, error) {
	switch e.Protocol {
	case models.ProtocolIR:
		return NewIR(e.Candidates, e.Ballots, opts...)
	case models.ProtocolOPL:
		return NewOPL(e.Candidates, e.Ballots, e.Seats, opts...)
	case models.ProtocolMPO:
		return NewMPO(e.Candidates, e.Ballots, e.Seats, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, e.Protocol)
}

// Run builds the matching tabulator and runs it
func Run(e Election, opts ...Option) (Result, error) {
	t, err := New(e, opts...)
	if err != nil {
		return nil, err
	}
	return t.Tabulate()
}

// WinnerNames returns the names of a result's winners
func WinnerNames(r Result) []string {
	winners := r.Winners()
	out := make([]string, len(winners))
	for i, c := range winners {
		out[i] = c.Name
	}
	return out
}

func candidateNames(cs []*models.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func partyNames(ps []*models.Party) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
