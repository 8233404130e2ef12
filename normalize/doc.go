// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package normalize turns raw election text into structured entities.

# Descriptors

Candidates parses the candidate line in either form:

	Rosen (D), Kleinberg (R), Chou (I)
	[Pike, D], [Foster, D], [Borg, R]

Parties groups the parsed candidates by party label, in first-seen order.

# Ballots

Ballot lines carry one comma-separated cell per candidate, in descriptor
order.

RankedBallots reads integer ranks and returns each ballot as a list of
candidates ordered by rank, first choice first.

SingleMarks reads single-mark ballots and returns the position of the marked
candidate.

# Errors

Malformed input is never counted. Every problem is returned as an
*InputError wrapping ErrMalformedDescriptor or ErrMalformedBallot:

	if errors.Is(err, normalize.ErrMalformedBallot) {
		// reject the election
	}
*/
package normalize
