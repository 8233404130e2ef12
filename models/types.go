// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Protocol is the voting protocol named in an election header
type Protocol string

// Voting protocol constants
const (
	ProtocolIR  Protocol = "IR"
	ProtocolOPL Protocol = "OPL"
	ProtocolMPO Protocol = "MPO"
)

// Valid reports whether p is one of the supported protocols
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolIR, ProtocolOPL, ProtocolMPO:
		return true
	}
	return false
}

// Name returns the long protocol name used in reports
func (p Protocol) Name() string {
	switch p {
	case ProtocolIR:
		return "Instant Runoff"
	case ProtocolOPL:
		return "Open Party List"
	case ProtocolMPO:
		return "Multiple Preferential Ordering"
	}
	return string(p)
}

// Domain types

// Candidate is a single candidate in an election.
// Votes only grows; Redistributed is reset at the start of every IR round.
type Candidate struct {
	Name          string `json:"name"`
	Party         string `json:"party"`
	Votes         int    `json:"votes"`
	Redistributed int    `json:"redistributed"`
	Eliminated    bool   `json:"eliminated"`
	Seats         int    `json:"seats"`
}

func NewCandidate(name, party string) *Candidate {
	return &Candidate{Name: name, Party: party}
}

func (c *Candidate) AddVote() {
	c.Votes++
}

// AddRedistributedVote counts a vote moved from an eliminated candidate
func (c *Candidate) AddRedistributedVote() {
	c.Votes++
	c.Redistributed++
}

func (c *Candidate) ResetRedistributed() {
	c.Redistributed = 0
}

// Eliminate marks the candidate as out of the race. There is no way back.
func (c *Candidate) Eliminate() {
	c.Eliminated = true
}

func (c *Candidate) AwardSeat() {
	c.Seats++
}

// String returns "Name (Party)"
func (c *Candidate) String() string {
	return c.Name + " (" + c.Party + ")"
}

// Party groups candidates sharing a party label.
// Votes is the working total and is overwritten during seat allocation;
// InitialVotes is the frozen pre-allocation total used for reporting.
type Party struct {
	Name         string       `json:"name"`
	Candidates   []*Candidate `json:"candidates"`
	Votes        int          `json:"remaining_votes"`
	InitialVotes int          `json:"votes"`
	Seats        int          `json:"seats"`
}

func NewParty(name string) *Party {
	return &Party{Name: name}
}

func (p *Party) AddCandidate(c *Candidate) {
	p.Candidates = append(p.Candidates, c)
}

func (p *Party) AddVote() {
	p.Votes++
}

// Freeze snapshots the current vote total as the pre-allocation total
func (p *Party) Freeze() {
	p.InitialVotes = p.Votes
}

// SetRemainingVotes overwrites the working total with the votes left over
// after whole-seat allocation
func (p *Party) SetRemainingVotes(votes int) {
	p.Votes = votes
}

func (p *Party) AwardSeats(n int) {
	p.Seats += n
}

// Request types

// TabulateRequest is the JSON form of an election submitted over HTTP
type TabulateRequest struct {
	Name       string   `json:"name"`
	Protocol   Protocol `json:"protocol"`
	Candidates string   `json:"candidates"`
	Seats      int      `json:"seats,omitempty"`
	Ballots    []string `json:"ballots"`
}

// Response types

type TabulationResponse struct {
	ID         string          `json:"id"`
	Protocol   Protocol        `json:"protocol"`
	Source     string          `json:"source,omitempty"`
	Ballots    int             `json:"ballot_count"`
	Seats      int             `json:"seat_count"`
	Winners    []string        `json:"winners"`
	ComputedAt time.Time       `json:"computed_at"`
	Result     json.RawMessage `json:"result,omitempty"`
}

type TabulationList struct {
	Tabulations []TabulationResponse `json:"tabulations"`
}

// AuditEntry is one stored line of an audit trail
type AuditEntry struct {
	Seq     int    `json:"seq"`
	Kind    string `json:"kind"`
	Round   int    `json:"round"`
	Message string `json:"message"`
}

// VerifyResponse reports whether a stored audit trail still matches its seal
type VerifyResponse struct {
	ID          string `json:"id"`
	Valid       bool   `json:"valid"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
