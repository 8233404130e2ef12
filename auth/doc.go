// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth seals audit trails so later tampering can be detected.

# Keys

The signing key is derived from the configured audit secret with
PBKDF2-SHA256:

	key := auth.DeriveSealKey(cfg.AuditSecret)

# Seals

A seal is an HMAC-SHA256 over the tabulation ID and the rendered audit
trail, URL-safe base64 encoded without padding:

	seal := auth.SealAudit(trail.ID(), body, key)
	err := auth.VerifySeal(trail.ID(), body, seal, key)

Seals are deterministic, so the server can verify a stored trail by
recomputing the seal. VerifySeal compares in constant time.

# Fingerprints

Fingerprint shortens a seal to a base62 string for printing next to a
result.
*/
package auth
