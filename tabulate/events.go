// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import "github.com/danielhkuo/vote-easy/models"

// EventKind classifies an audit event
type EventKind string

const (
	EventInitialCount   EventKind = "initial_count"
	EventMajority       EventKind = "majority"
	EventTie            EventKind = "tie"
	EventElimination    EventKind = "elimination"
	EventRedistribution EventKind = "redistribution"
	EventSeatAllocation EventKind = "seat_allocation"
	EventResult         EventKind = "result"
)

// Standing is a point-in-time copy of one candidate or party row
type Standing struct {
	Name          string `json:"name"`
	Party         string `json:"party,omitempty"`
	Votes         int    `json:"votes"`
	Remaining     int    `json:"remaining,omitempty"`
	Redistributed int    `json:"redistributed,omitempty"`
	Seats         int    `json:"seats,omitempty"`
	Eliminated    bool   `json:"eliminated,omitempty"`
}

// Event is one step of a tabulation, in the order it happened.
// Ballots is the vote denominator at that moment and Seats the configured
// seat total, so a renderer can compute percentages.
type Event struct {
	Kind      EventKind  `json:"kind"`
	Round     int        `json:"round"`
	Message   string     `json:"message"`
	Tied      []string   `json:"tied,omitempty"`
	Chosen    string     `json:"chosen,omitempty"`
	Standings []Standing `json:"standings,omitempty"`
	Parties   bool       `json:"parties,omitempty"`
	Ballots   int        `json:"ballots"`
	Seats     int        `json:"seats,omitempty"`
}

// Recorder receives tabulation events. The audit trail implements it.
type Recorder interface {
	Record(e Event)
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(e Event)

func (f RecorderFunc) Record(e Event) {
	f(e)
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}

func candidateStandings(cs []*models.Candidate) []Standing {
	out := make([]Standing, len(cs))
	for i, c := range cs {
		out[i] = Standing{
			Name:          c.Name,
			Party:         c.Party,
			Votes:         c.Votes,
			Redistributed: c.Redistributed,
			Seats:         c.Seats,
			Eliminated:    c.Eliminated,
		}
	}
	return out
}

func partyStandings(ps []*models.Party) []Standing {
	out := make([]Standing, len(ps))
	for i, p := range ps {
		out[i] = Standing{
			Name:      p.Name,
			Votes:     p.InitialVotes,
			Remaining: p.Votes,
			Seats:     p.Seats,
		}
	}
	return out
}
