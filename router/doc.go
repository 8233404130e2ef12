// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the vote-easy API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Tabulation:

	POST /tabulations      - Tabulate an election (JSON or raw file)
	GET  /tabulations      - Recent runs, newest first
	GET  /tabulations/{id} - One run with its full result

Audit:

	GET  /tabulations/{id}/audit  - Rendered audit trail
	POST /tabulations/{id}/verify - Check the trail against its seal

Every route except health and root is wrapped in middleware.WithLogging.
*/
package router
