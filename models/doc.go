// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the election entities and the API types.

# Domain Types

Entities mutated by the tabulators:

  - Candidate: name, party label, votes, per-round redistributed votes,
    elimination flag, seats won
  - Party: name, member candidates (descriptor order), working votes,
    frozen initial votes, seats allocated

Candidates are created once by the normalizer and only ever change through
their helpers (AddVote, AddRedistributedVote, Eliminate, AwardSeat, ...).
Elimination is one-way.

# Request Types

  - TabulateRequest: name, protocol, candidates, seats, ballots

# Response Types

  - TabulationResponse: id, protocol, counts, winners, result payload
  - TabulationList: recent tabulations
  - AuditEntry: seq, kind, round, message
  - ErrorResponse: error, message

# Constants

Protocols:

	ProtocolIR  = "IR"
	ProtocolOPL = "OPL"
	ProtocolMPO = "MPO"
*/
package models
