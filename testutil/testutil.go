// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/vote-easy/cliparse"
	"github.com/danielhkuo/vote-easy/db"
	"github.com/danielhkuo/vote-easy/models"
)

// TestDBURL is the connection string for the test database. Every
// connection to it gets a fresh, private in-memory database.
const TestDBURL = ":memory:"

// TestAuditSecret seals audit trails in tests
const TestAuditSecret = "test-audit-secret"

// SetupTestDB creates a fresh test database with the full schema. It is
// closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Serve:        true,
		Port:         cliparse.DefaultPort,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.DriverSQLite,
		LogLevel:     "info",
		AuditSecret:  TestAuditSecret,
	}
}

// IRFile is a small Instant Runoff election. Rosen wins after one
// redistribution round.
const IRFile = `IR
4
Rosen (D), Kleinberg (R), Chou (I), Royce (L)
6
1,3,4,2
1,,2,
1,2,3,
3,2,1,4
,,1,2
,,,1
`

// OPLFile is a small Open Party List election. D takes 2 of 3 seats and
// Pike wins.
const OPLFile = `OPL
6
Pike (D), Foster (D), Deutsch (R), Borg (R), Jones (R), Smith (I)
3
9
1,,,,,
1,,,,,
1,,,,,
,1,,,,
,1,,,,
,,,1,,
,,,1,,
,,,,1,
,,,,,1
`

// MPOFile is a small Multiple Preferential Ordering election with no ties
const MPOFile = `MPO
3
[Pike, D], [Foster, D], [Deutsch, R]
3
6
1,,
1,,
1,,
,1,
,1,
,,1
`

// IRRequest is IRFile as a JSON request
func IRRequest() models.TabulateRequest {
	lines := strings.Split(strings.TrimSpace(IRFile), "\n")
	return models.TabulateRequest{
		Name:       "primary",
		Protocol:   models.ProtocolIR,
		Candidates: lines[2],
		Ballots:    lines[4:],
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFileRequest creates an HTTP test request carrying a raw election file
func MakeFileRequest(method, path, file string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(file))
	req.Header.Set("Content-Type", "text/csv")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
