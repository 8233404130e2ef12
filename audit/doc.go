// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit records what a tabulation did and renders it for people.

A Trail is passed to a tabulator as its recorder:

	trail := audit.NewTrail(models.ProtocolOPL, "primary.csv")
	res, err := tabulate.Run(election, tabulate.WithRecorder(trail))
	...
	err = trail.WriteFile("audit_file.txt")

Every trail carries a random run ID which doubles as the ID of the stored
tabulation. WriteFile may be called once per trail; the file is the record
of that run and is never appended to.

WriteSummary prints the short result shown on screen once tabulation is
done.
*/
package audit
