// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for vote-easy.

vote-easy tabulates elections under three protocols: Instant Runoff (IR),
Open Party List (OPL) and Multiple Preferential Ordering (MPO). Every run
writes an audit trail of each counting step.

# Tabulating a File

	go run . election.csv
	go run . -f election.csv -a audit.txt

The result is printed to stdout and the audit trail is written to
./audit_file.txt unless -a says otherwise. With -d (or DATABASE_URL) the run
is also stored.

# Starting the Server

	go run . -serve -d ./vote-easy.db
	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run . -serve

# Configuration

  - DATABASE_URL (-d): Database connection string (required for -serve)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - AUDIT_SECRET (-audit-secret): Secret used to seal audit trails
  - PORT (-p): Server port (default: 3318)
  - LOG_LEVEL (-log-level): debug, info, warn or error

A .env file in the working directory is read first.

# Architecture

  - tabulate: IR, OPL and MPO tabulators
  - normalize: Candidate descriptor and ballot parsing
  - tiebreak: Random tie-breaking
  - ingest: Election file reader
  - audit: Audit trail recording and rendering
  - auth: Audit seals
  - db: Schema and tabulation storage
  - handlers, router, middleware: HTTP API
  - models: Domain and request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
