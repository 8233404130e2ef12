// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tiebreak selects one winner out of a set of tied options.

Every tabulator resolves ties through a TieBreaker. The production
implementation is Secure, which draws from crypto/rand so that every option
has the same probability of being chosen regardless of the size of the set
or the order it was built in:

	winner, _ := tiebreak.Choose(tiebreak.Secure{}, tied)

Tests inject a PickFunc (or First / Last) to make a tie resolve the same way
on every run.

Choose skips the draw entirely when there is a single option.
*/
package tiebreak
