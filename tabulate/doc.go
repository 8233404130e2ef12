// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tabulate runs elections to completion.

Three protocols are supported, each behind the Tabulator interface:

  - IR (Instant Runoff): single winner. First choices are counted, then the
    lowest candidates are eliminated and their ballots move to the next
    ranked choice until someone holds more than half of the ballots still in
    play, or every remaining candidate is tied.
  - OPL (Open Party List): votes are pooled per party, whole seats are given
    out by quota and leftover seats by largest remainder. The winner is the
    top candidate of the party with the most seats.
  - MPO (Multiple Preferential Ordering): candidates are ranked by votes and
    seated by a pairwise sweep down the ranking.

Pick a tabulator by protocol tag with New, or call Run to build and execute
one in a single step:

	res, err := tabulate.Run(tabulate.Election{
		Protocol:   models.ProtocolIR,
		Candidates: "Rosen (D), Kleinberg (R), Chou (I)",
		Ballots:    []string{"1,2,3", "2,1,", ",1,2"},
	}, tabulate.WithRecorder(trail))

# Ties

Every tie is resolved through a tiebreak.TieBreaker, crypto/rand backed by
default. Tests pass WithTieBreaker(tiebreak.First) for repeatable outcomes.

# Events

A Recorder receives an Event for every step: the initial count, each
elimination and redistribution, each seat allocation, each tie-breaker draw
and the final result. The audit package renders these into the audit file.

# Errors

Malformed descriptors and ballots surface as *normalize.InputError. An
election with no usable ballots returns ErrNoBallots, OPL and MPO with fewer
than one seat return ErrInvalidSeats, and a second call to Tabulate on the
same instance returns ErrAlreadyTabulated.

Tabulators are single use and not safe for concurrent use. Separate
instances share nothing and may run in parallel.
*/
package tabulate
