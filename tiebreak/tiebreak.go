// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tiebreak

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TieBreaker picks one index out of n equally ranked options
type TieBreaker interface {
	// Pick returns an index in [0, n). n is always at least 1.
	Pick(n int) int
}

// Secure draws uniformly from crypto/rand.
// The zero value is ready to use.
type Secure struct{}

// Pick returns a uniformly random index in [0, n)
func (Secure) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("tiebreak: failed to read random source: %v", err))
	}
	return int(idx.Int64())
}

// PickFunc adapts a plain function to the TieBreaker interface
type PickFunc func(n int) int

func (f PickFunc) Pick(n int) int {
	return f(n)
}

// First always picks the first option. Useful when a test wants a
// predictable outcome.
var First = PickFunc(func(int) int { return 0 })

// Last always picks the final option
var Last = PickFunc(func(n int) int { return n - 1 })

// Choose returns the element of items selected by tb along with its index.
// items must not be empty.
func Choose[T any](tb TieBreaker, items []T) (T, int) {
	if len(items) == 1 {
		return items[0], 0
	}
	idx := tb.Pick(len(items))
	if idx < 0 || idx >= len(items) {
		panic(fmt.Sprintf("tiebreak: pick %d out of range for %d options", idx, len(items)))
	}
	return items[idx], idx
}
