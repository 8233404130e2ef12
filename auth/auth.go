// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

var ErrInvalidSeal = errors.New("audit seal does not match")

const (
	// Key derivation parameters
	pbkdfIterations = 100000
	keyLength       = 32
	sealKeySalt     = "vote-easy audit seal v1"
)

// DeriveSealKey stretches the configured audit secret into a signing key.
// Derivation is slow on purpose; do it once at startup.
func DeriveSealKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(sealKeySalt), pbkdfIterations, keyLength, sha256.New)
}

// SealAudit creates an HMAC-SHA256 seal over a tabulation ID and its
// rendered audit trail. The same inputs always produce the same seal, so
// it can be checked later without storing the key alongside the trail.
func SealAudit(tabulationID string, audit []byte, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(tabulationID))
	h.Write([]byte{0})
	h.Write(audit)
	sum := h.Sum(nil)
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// VerifySeal checks that seal was produced for this tabulation ID and audit
// trail with key
func VerifySeal(tabulationID string, audit []byte, seal string, key []byte) error {
	expected := SealAudit(tabulationID, audit, key)
	if !hmac.Equal([]byte(seal), []byte(expected)) {
		return ErrInvalidSeal
	}
	return nil
}

// Fingerprint returns a short base62 form of a seal for display
func Fingerprint(seal string) string {
	sum := sha256.Sum256([]byte(seal))
	return base62Encode(sum[:8])
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
