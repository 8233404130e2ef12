// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"bytes"
	"strings"
	"testing"
)

func TestDeriveSealKey(t *testing.T) {
	k1 := DeriveSealKey("secret")
	k2 := DeriveSealKey("secret")
	k3 := DeriveSealKey("other")

	if len(k1) != keyLength {
		t.Errorf("DeriveSealKey() length = %d, want %d", len(k1), keyLength)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("DeriveSealKey() is not deterministic")
	}
	if bytes.Equal(k1, k3) {
		t.Error("DeriveSealKey() produced the same key for different secrets")
	}
}

func TestSealAudit(t *testing.T) {
	key := DeriveSealKey("test-secret")
	audit := []byte("Election audit\n== Result ==\nWinning candidate is Rosen (D)\n")

	tests := []struct {
		name  string
		id    string
		audit []byte
		key   []byte
	}{
		{"standard", "run-1", audit, key},
		{"empty audit", "run-2", nil, key},
		{"empty key", "run-3", audit, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seal := SealAudit(tt.id, tt.audit, tt.key)

			if strings.ContainsAny(seal, "+/=") {
				t.Errorf("SealAudit() = %q is not URL-safe", seal)
			}
			if seal != SealAudit(tt.id, tt.audit, tt.key) {
				t.Error("SealAudit() is not deterministic")
			}
			if err := VerifySeal(tt.id, tt.audit, seal, tt.key); err != nil {
				t.Errorf("VerifySeal() error = %v", err)
			}
		})
	}
}

func TestVerifySealRejectsTampering(t *testing.T) {
	key := DeriveSealKey("test-secret")
	audit := []byte("Winning candidate is Rosen (D) with 3 votes")
	seal := SealAudit("run-1", audit, key)

	tests := []struct {
		name  string
		id    string
		audit []byte
		seal  string
		key   []byte
	}{
		{"edited audit", "run-1", []byte("Winning candidate is Chou (I) with 3 votes"), seal, key},
		{"other tabulation", "run-2", audit, seal, key},
		{"wrong key", "run-1", audit, seal, DeriveSealKey("wrong")},
		{"truncated seal", "run-1", audit, seal[:10], key},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifySeal(tt.id, tt.audit, tt.seal, tt.key); err != ErrInvalidSeal {
				t.Errorf("VerifySeal() error = %v, want %v", err, ErrInvalidSeal)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("some-seal")
	if fp == "" || len(fp) > 11 {
		t.Errorf("Fingerprint() = %q, want 1-11 chars", fp)
	}
	for _, c := range fp {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			t.Errorf("Fingerprint() contains non-base62 char: %c", c)
		}
	}
	if fp != Fingerprint("some-seal") {
		t.Error("Fingerprint() is not deterministic")
	}
}

func TestBase62Encode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"zero", []byte{0, 0}, "0"},
		{"one", []byte{1}, "1"},
		{"sixty two", []byte{62}, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base62Encode(tt.data); got != tt.want {
				t.Errorf("base62Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}
