// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielhkuo/vote-easy/models"
)

var (
	ErrMalformedDescriptor = errors.New("malformed candidate descriptor")
	ErrMalformedBallot     = errors.New("malformed ballot")
)

// InputError reports bad election input. Ballot is the 1-based ballot
// number, or 0 when the descriptor line is at fault.
type InputError struct {
	Ballot int
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Ballot == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%v %d: %s", e.Err, e.Ballot, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func descriptorError(format string, args ...any) error {
	return &InputError{Reason: fmt.Sprintf(format, args...), Err: ErrMalformedDescriptor}
}

func ballotError(ballot int, format string, args ...any) error {
	return &InputError{Ballot: ballot, Reason: fmt.Sprintf(format, args...), Err: ErrMalformedBallot}
}

// Candidates parses a candidate/party descriptor line. Two forms are
// accepted:
//
//	Rosen (D), Kleinberg (R), Chou (I)
//	[Pike, D], [Foster, D], [Borg, R]
func Candidates(descriptor string) ([]*models.Candidate, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, descriptorError("no candidates listed")
	}

	var pairs [][2]string
	var err error
	if strings.HasPrefix(descriptor, "[") {
		pairs, err = splitBracketed(descriptor)
	} else {
		pairs, err = splitParenthesized(descriptor)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(pairs))
	candidates := make([]*models.Candidate, 0, len(pairs))
	for _, pair := range pairs {
		name, party := pair[0], pair[1]
		if seen[name] {
			return nil, descriptorError("duplicate candidate %q", name)
		}
		seen[name] = true
		candidates = append(candidates, models.NewCandidate(name, party))
	}

	return candidates, nil
}

// splitParenthesized handles "Name (P), Name (P)"
func splitParenthesized(descriptor string) ([][2]string, error) {
	var pairs [][2]string
	for _, token := range strings.Split(descriptor, ",") {
		token = strings.TrimSpace(token)
		open := strings.LastIndex(token, "(")
		if open <= 0 || !strings.HasSuffix(token, ")") {
			return nil, descriptorError("expected \"Name (Party)\", got %q", token)
		}
		name := strings.TrimSpace(token[:open])
		party := strings.TrimSpace(token[open+1 : len(token)-1])
		if name == "" || party == "" {
			return nil, descriptorError("expected \"Name (Party)\", got %q", token)
		}
		pairs = append(pairs, [2]string{name, party})
	}
	return pairs, nil
}

// splitBracketed handles "[Name, P], [Name, P]"
func splitBracketed(descriptor string) ([][2]string, error) {
	if !strings.HasSuffix(descriptor, "]") {
		return nil, descriptorError("unterminated bracket in %q", descriptor)
	}
	inner := descriptor[1 : len(descriptor)-1]

	var pairs [][2]string
	for _, token := range strings.Split(inner, "],") {
		token = strings.TrimSpace(token)
		token = strings.TrimPrefix(token, "[")
		fields := strings.Split(token, ",")
		if len(fields) != 2 {
			return nil, descriptorError("expected \"[Name, Party]\", got %q", token)
		}
		name := strings.TrimSpace(fields[0])
		party := strings.TrimSpace(fields[1])
		if name == "" || party == "" {
			return nil, descriptorError("expected \"[Name, Party]\", got %q", token)
		}
		pairs = append(pairs, [2]string{name, party})
	}
	return pairs, nil
}

// Parties groups candidates by party label. Parties appear in the order
// their first candidate appears; members keep descriptor order.
func Parties(candidates []*models.Candidate) []*models.Party {
	var parties []*models.Party
	index := make(map[string]*models.Party)
	for _, c := range candidates {
		p, ok := index[c.Party]
		if !ok {
			p = models.NewParty(c.Party)
			index[c.Party] = p
			parties = append(parties, p)
		}
		p.AddCandidate(c)
	}
	return parties
}

// splitCells splits a ballot line into exactly n cells
func splitCells(line string, n, ballot int) ([]string, error) {
	cells := strings.Split(strings.TrimSpace(line), ",")
	if len(cells) != n {
		return nil, ballotError(ballot, "expected %d cells, got %d", n, len(cells))
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells, nil
}

// RankedBallots converts raw ranked ballot lines into rank-ordered lists of
// candidates. Cell i of a line holds the rank the voter gave candidates[i],
// or is empty. The result for each line is ordered by rank (first choice
// first) and unranked candidates are left out, so a ballot that ranks nobody
// comes back empty. Ranks must run 1..k without gaps.
func RankedBallots(candidates []*models.Candidate, lines []string) ([][]*models.Candidate, error) {
	n := len(candidates)
	ballots := make([][]*models.Candidate, 0, len(lines))

	for i, line := range lines {
		cells, err := splitCells(line, n, i+1)
		if err != nil {
			return nil, err
		}

		slots := make([]*models.Candidate, n)
		for pos, cell := range cells {
			if cell == "" {
				continue
			}
			rank, err := strconv.Atoi(cell)
			if err != nil {
				return nil, ballotError(i+1, "rank %q for %s is not a number", cell, candidates[pos].Name)
			}
			if rank < 1 || rank > n {
				return nil, ballotError(i+1, "rank %d for %s is outside 1..%d", rank, candidates[pos].Name, n)
			}
			if slots[rank-1] != nil {
				return nil, ballotError(i+1, "rank %d given to both %s and %s", rank, slots[rank-1].Name, candidates[pos].Name)
			}
			slots[rank-1] = candidates[pos]
		}

		ranked := make([]*models.Candidate, 0, n)
		for rank, c := range slots {
			if c == nil {
				continue
			}
			if len(ranked) != rank {
				return nil, ballotError(i+1, "rank %d given to %s but rank %d is missing", rank+1, c.Name, len(ranked)+1)
			}
			ranked = append(ranked, c)
		}
		ballots = append(ballots, ranked)
	}

	return ballots, nil
}

// SingleMarks returns, for every ballot line, the position of the candidate
// the vote goes to: the first cell equal to "1". Every other cell must be
// empty.
func SingleMarks(n int, lines []string) ([]int, error) {
	marks := make([]int, 0, len(lines))

	for i, line := range lines {
		cells, err := splitCells(line, n, i+1)
		if err != nil {
			return nil, err
		}

		mark := -1
		for pos, cell := range cells {
			switch cell {
			case "":
			case "1":
				if mark >= 0 {
					return nil, ballotError(i+1, "more than one candidate marked")
				}
				mark = pos
			default:
				return nil, ballotError(i+1, "unexpected mark %q in cell %d", cell, pos+1)
			}
		}
		if mark < 0 {
			return nil, ballotError(i+1, "no candidate marked")
		}
		marks = append(marks, mark)
	}

	return marks, nil
}
