// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the vote-easy API.

# Handler Types

TabulationHandler runs elections and serves stored results. It is created
with the database and config:

	h := handlers.NewTabulationHandler(db, cfg)

When cfg.AuditSecret is set, the seal key is derived once here and every
stored audit trail is sealed with it.

# Tabulating

	POST /tabulations → Create

The body is either a JSON TabulateRequest:

	{"name": "primary", "protocol": "IR",
	 "candidates": "Rosen (D), Kleinberg (R)",
	 "ballots": ["1,2", "2,1", "1,"]}

or a raw election file in the same layout the command line reads (any
Content-Type other than application/json). The optional ?source= query
parameter names an uploaded file.

A successful run returns 201 with the TabulationResponse and sets:

	X-Tabulation-Id  the run ID
	X-Audit-Seal     the audit seal (only when sealing is configured)

Bad input returns 400. Ballot errors in an uploaded file name the file line.

# Reading Results

	GET  /tabulations              → List (?limit=, default 50)
	GET  /tabulations/{id}         → Get
	GET  /tabulations/{id}/audit   → GetAudit (text, or ?format=json)
	POST /tabulations/{id}/verify  → Verify

Verify recomputes the seal over the stored trail and compares it with the
stored seal, or with the seal sent in X-Audit-Seal.
*/
package handlers
