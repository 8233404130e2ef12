// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "testing"

func TestCandidateCounters(t *testing.T) {
	c := NewCandidate("Rosen", "D")

	c.AddVote()
	c.AddRedistributedVote()
	c.AddRedistributedVote()

	if c.Votes != 3 {
		t.Errorf("Expected 3 votes, got %d", c.Votes)
	}
	if c.Redistributed != 2 {
		t.Errorf("Expected 2 redistributed votes, got %d", c.Redistributed)
	}

	c.ResetRedistributed()
	if c.Redistributed != 0 {
		t.Errorf("Expected redistributed votes reset, got %d", c.Redistributed)
	}
	if c.Votes != 3 {
		t.Errorf("Reset should not touch votes, got %d", c.Votes)
	}

	if c.String() != "Rosen (D)" {
		t.Errorf("Unexpected string form %q", c.String())
	}
}

func TestCandidateElimination(t *testing.T) {
	c := NewCandidate("Royce", "L")
	if c.Eliminated {
		t.Fatal("New candidate should not be eliminated")
	}

	c.Eliminate()
	c.Eliminate()
	if !c.Eliminated {
		t.Error("Expected candidate to be eliminated")
	}
}

func TestPartyAllocation(t *testing.T) {
	p := NewParty("D")
	p.AddCandidate(NewCandidate("Pike", "D"))
	p.AddCandidate(NewCandidate("Foster", "D"))

	for i := 0; i < 5; i++ {
		p.AddVote()
	}
	p.Freeze()
	p.SetRemainingVotes(1)
	p.AwardSeats(2)
	p.AwardSeats(1)

	if len(p.Candidates) != 2 || p.Candidates[0].Name != "Pike" {
		t.Errorf("Candidates should keep insertion order, got %v", p.Candidates)
	}
	if p.InitialVotes != 5 {
		t.Errorf("Expected frozen votes 5, got %d", p.InitialVotes)
	}
	if p.Votes != 1 {
		t.Errorf("Expected remaining votes 1, got %d", p.Votes)
	}
	if p.Seats != 3 {
		t.Errorf("Expected 3 seats, got %d", p.Seats)
	}
}

func TestProtocolValid(t *testing.T) {
	tests := []struct {
		protocol Protocol
		valid    bool
	}{
		{ProtocolIR, true},
		{ProtocolOPL, true},
		{ProtocolMPO, true},
		{"STV", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.protocol.Valid(); got != tt.valid {
			t.Errorf("Protocol(%q).Valid() = %v, expected %v", tt.protocol, got, tt.valid)
		}
	}
}
