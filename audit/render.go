// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/tabulate"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// percent formats part/whole as a percentage with at most two decimals
func percent(part, whole int) string {
	if whole == 0 {
		return "0%"
	}
	return humanize.FtoaWithDigits(float64(part)/float64(whole)*100, 2) + "%"
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

// Render writes the whole trail as plain text
func (t *Trail) Render(w io.Writer) error {
	events := t.Events()

	var b strings.Builder
	fmt.Fprintf(&b, "Election audit %s\n", t.ID())
	fmt.Fprintf(&b, "Voting protocol: %s (%s)\n", t.protocol.Name(), t.protocol)
	if t.source != "" {
		fmt.Fprintf(&b, "Source: %s\n", t.source)
	}
	fmt.Fprintf(&b, "Started: %s\n", t.started.Format(timeLayout))
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, e := range events {
		if err := renderEvent(w, e); err != nil {
			return err
		}
	}
	return nil
}

func heading(e tabulate.Event) string {
	switch e.Kind {
	case tabulate.EventInitialCount:
		return "Initial count"
	case tabulate.EventResult:
		return "Result"
	}
	title := strings.ReplaceAll(string(e.Kind), "_", " ")
	title = strings.ToUpper(title[:1]) + title[1:]
	if e.Round > 0 {
		return fmt.Sprintf("%s round: %s", humanize.Ordinal(e.Round), title)
	}
	return title
}

func renderEvent(w io.Writer, e tabulate.Event) error {
	if _, err := fmt.Fprintf(w, "\n== %s ==\n%s\n", heading(e), e.Message); err != nil {
		return err
	}
	if len(e.Tied) > 0 {
		if _, err := fmt.Fprintf(w, "Tied: %s\n", strings.Join(e.Tied, ", ")); err != nil {
			return err
		}
	}
	if len(e.Standings) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if e.Parties {
		return partyTable(w, e.Standings, e.Ballots, e.Seats)
	}
	return candidateTable(w, e.Standings, e.Ballots, e.Seats)
}

func candidateTable(w io.Writer, rows []tabulate.Standing, ballots, seats int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if seats > 0 {
		fmt.Fprintln(tw, "Candidate\tVotes\tSeats\t% of Votes\t% of Seats\t")
		for _, s := range rows {
			fmt.Fprintf(tw, "%s (%s)\t%s\t%d\t%s\t%s\t\n",
				s.Name, s.Party, count(s.Votes), s.Seats, percent(s.Votes, ballots), percent(s.Seats, seats))
		}
		return tw.Flush()
	}

	fmt.Fprintln(tw, "Candidate\tVotes\tRedistributed\t% of Votes\t")
	for _, s := range rows {
		if s.Eliminated {
			fmt.Fprintf(tw, "%s (%s)\t0 (Eliminated)\t-\t-\t\n", s.Name, s.Party)
			continue
		}
		fmt.Fprintf(tw, "%s (%s)\t%s\t%s\t%s\t\n",
			s.Name, s.Party, count(s.Votes), count(s.Redistributed), percent(s.Votes, ballots))
	}
	return tw.Flush()
}

func partyTable(w io.Writer, rows []tabulate.Standing, ballots, seats int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Party\tVotes\tRemaining\tSeats\t% of Votes\t% of Seats\t")
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t\n",
			s.Name, count(s.Votes), count(s.Remaining), s.Seats, percent(s.Votes, ballots), percent(s.Seats, seats))
	}
	return tw.Flush()
}

// WriteSummary writes the on-screen election result
func WriteSummary(w io.Writer, res tabulate.Result) error {
	switch r := res.(type) {
	case *tabulate.IRResult:
		return irSummary(w, r)
	case *tabulate.OPLResult:
		return oplSummary(w, r)
	case *tabulate.MPOResult:
		return mpoSummary(w, r)
	}
	return fmt.Errorf("%w: %q", tabulate.ErrUnknownProtocol, res.Protocol())
}

func irSummary(w io.Writer, r *tabulate.IRResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%s election, %s ballots\n\n", models.ProtocolIR.Name(), count(r.Ballots))
	fmt.Fprintln(tw, "Candidate\tVotes\t% of Votes\t")
	for _, c := range r.Candidates {
		if c.Eliminated {
			fmt.Fprintf(tw, "%s\t0 (Eliminated)\t0%%\t\n", c)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c, count(c.Votes), percent(c.Votes, r.ActiveBallots))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	how := "a majority"
	if r.Resolution == tabulate.ResolvedByTie {
		how = "the tie-breaker"
	}
	_, err := fmt.Fprintf(w, "\nWinning candidate is %s from the %s party, who wins by %s with %s votes after %d redistribution rounds.\n",
		r.Winner.Name, r.Winner.Party, how, count(r.Winner.Votes), len(r.Rounds))
	return err
}

func oplSummary(w io.Writer, r *tabulate.OPLResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%s election, %s ballots, %d seats, quota %s\n\n",
		models.ProtocolOPL.Name(), count(r.Ballots), r.Seats, count(r.Quota))
	fmt.Fprintln(tw, "Party\tVotes\tSeats\t% of Votes / % of Seats\t")
	for _, p := range r.Parties {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s / %s\t\n",
			p.Name, count(p.InitialVotes), p.Seats, percent(p.InitialVotes, r.Ballots), percent(p.Seats, r.Seats))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nThe %s party has won the election with %s votes and %d seats.\n\n",
		r.WinningParty.Name, count(r.WinningParty.InitialVotes), r.WinningParty.Seats)

	tw = tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Candidate\tVotes\t% of Votes\t")
	for _, c := range r.WinningParty.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c, count(c.Votes), percent(c.Votes, r.Ballots))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nWinning candidate is %s from the %s party with %s votes.\n",
		r.WinningCandidate.Name, r.WinningCandidate.Party, count(r.WinningCandidate.Votes))
	return err
}

func mpoSummary(w io.Writer, r *tabulate.MPOResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%s election, %s ballots, %d seats\n\n", models.ProtocolMPO.Name(), count(r.Ballots), r.Seats)
	fmt.Fprintln(tw, "Candidate\tVotes\tSeats\t% of Votes\t% of Seats\t")
	for _, c := range r.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n",
			c, count(c.Votes), c.Seats, percent(c.Votes, r.Ballots), percent(c.Seats, r.Seats))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d candidates won seats:\n", len(r.Elected))
	for i, c := range r.Elected {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", humanize.Ordinal(i+1), c); err != nil {
			return err
		}
	}
	return nil
}
