// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/normalize"
	"github.com/danielhkuo/vote-easy/tabulate"
)

var ErrMalformedFile = errors.New("malformed election file")

// FormatError reports a problem with the election file layout. Line is
// 1-based; 0 means the problem is not tied to one line (e.g. too few
// ballots).
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", ErrMalformedFile, e.Reason)
	}
	return fmt.Sprintf("%v: line %d: %s", ErrMalformedFile, e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformedFile
}

func formatError(line int, format string, args ...any) error {
	return &FormatError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// File is a parsed election file
type File struct {
	Source   string
	Election tabulate.Election
	// BallotLine is the line number of the first ballot, used to map a
	// normalize.InputError back to the file
	BallotLine int
}

// ReadFile opens and parses the election file at path
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open election file: %w", err)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	file.Source = filepath.Base(path)
	return file, nil
}

// Parse reads an election file:
//
//	IR                                  OPL | MPO
//	<candidate count>                   <candidate count>
//	<candidate descriptor>              <candidate descriptor>
//	<ballot count>                      <seat count>
//	<ballot>...                         <ballot count>
//	                                    <ballot>...
//
// The candidate count must match the descriptor and the ballot count must
// match the number of ballot lines. Trailing blank lines are ignored.
func Parse(r io.Reader) (*File, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	next := 0
	take := func(what string) (string, int, error) {
		if next >= len(lines) {
			return "", 0, formatError(next+1, "missing %s", what)
		}
		next++
		return strings.TrimSpace(lines[next-1]), next, nil
	}
	takeCount := func(what string, minimum int) (int, error) {
		s, line, err := take(what)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, formatError(line, "%s %q is not a number", what, s)
		}
		if n < minimum {
			return 0, formatError(line, "%s must be at least %d, got %d", what, minimum, n)
		}
		return n, nil
	}

	header, line, err := take("protocol header")
	if err != nil {
		return nil, err
	}
	protocol := models.Protocol(strings.ToUpper(header))
	if !protocol.Valid() {
		return nil, formatError(line, "unknown protocol %q", header)
	}

	numCandidates, err := takeCount("candidate count", 1)
	if err != nil {
		return nil, err
	}

	descriptor, line, err := take("candidate line")
	if err != nil {
		return nil, err
	}
	candidates, err := normalize.Candidates(descriptor)
	if err != nil {
		return nil, formatError(line, "%v", err)
	}
	if len(candidates) != numCandidates {
		return nil, formatError(line, "header declares %d candidates, found %d", numCandidates, len(candidates))
	}

	seats := 0
	if protocol != models.ProtocolIR {
		if seats, err = takeCount("seat count", 1); err != nil {
			return nil, err
		}
	}

	numBallots, err := takeCount("ballot count", 0)
	if err != nil {
		return nil, err
	}

	ballots := lines[next:]
	if len(ballots) != numBallots {
		return nil, formatError(0, "header declares %d ballots, found %d", numBallots, len(ballots))
	}

	return &File{
		Election: tabulate.Election{
			Protocol:   protocol,
			Candidates: descriptor,
			Seats:      seats,
			Ballots:    ballots,
		},
		BallotLine: next + 1,
	}, nil
}

// readLines returns every line with trailing '\r' and trailing blank lines
// removed
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read election file: %w", err)
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, formatError(0, "file is empty")
	}
	return lines, nil
}

// BallotLineOf maps an error from tabulation back to a file line, if the
// error names a ballot
func (f *File) BallotLineOf(err error) (int, bool) {
	var inputErr *normalize.InputError
	if !errors.As(err, &inputErr) || inputErr.Ballot == 0 {
		return 0, false
	}
	return f.BallotLine + inputErr.Ballot - 1, true
}
