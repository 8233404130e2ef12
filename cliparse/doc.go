// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - ElectionFile: Election file to tabulate (file mode, required there)
  - AuditPath: Where the audit file is written (default: ./audit_file.txt)
  - Serve: Run the HTTP API instead of tabulating a file
  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (required in serve mode, optional in
    file mode where it enables storing the result)
  - DatabaseType: sqlite (default) or postgres
  - LogLevel: debug, info, warn or error (default: info)
  - AuditSecret: Secret used to seal audit trails (optional)

# CLI Flags

	-f             Election file (or first positional argument)
	-a             Audit file path
	-serve         HTTP mode
	-p             Server port
	-d             Database URL
	-t             Database type
	-log-level     Log level
	-audit-secret  Audit seal secret

# Environment Variables

Flags fall back to environment variables:

	ELECTION_FILE → -f
	AUDIT_PATH    → -a
	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	LOG_LEVEL     → -log-level
	AUDIT_SECRET  → -audit-secret

CLI flags take precedence over environment variables. LoadEnv reads a .env
file into the environment first; variables that are already set win over
the file.

# Validation

ParseFlags returns an error if:

  - serve mode has no database URL
  - file mode has no election file
  - the database type or log level is unknown

# Example

	// In main.go
	if err := cliparse.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
