// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "vote-easy API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// 400 and 404 are valid handler responses here; 405 means no route
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/tabulations"},
		{"GET", "/tabulations"},
		{"GET", "/tabulations/test-id"},
		{"GET", "/tabulations/test-id/audit"},
		{"POST", "/tabulations/test-id/verify"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/tabulations/test-id"},
		{"PUT", "/tabulations"},
		{"POST", "/tabulations/test-id/audit"},
		{"GET", "/tabulations/test-id/verify"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

// TestTabulationWorkflow drives one election through every route
func TestTabulationWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// Tabulate
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeFileRequest("POST", "/tabulations?source=primary.csv", testutil.IRFile))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.TabulationResponse
	testutil.AssertJSON(t, w, &created)
	seal := w.Header().Get("X-Audit-Seal")
	if created.ID == "" || seal == "" {
		t.Fatalf("Expected an ID and a seal, got %q and %q", created.ID, seal)
	}

	// The {id} parameter reaches the handler
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/tabulations/"+created.ID, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var fetched models.TabulationResponse
	testutil.AssertJSON(t, w, &fetched)
	if fetched.Source != "primary.csv" || len(fetched.Winners) != 1 || fetched.Winners[0] != "Rosen" {
		t.Errorf("Unexpected tabulation: %+v", fetched)
	}

	// Listed
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/tabulations", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var list models.TabulationList
	testutil.AssertJSON(t, w, &list)
	if len(list.Tabulations) != 1 || list.Tabulations[0].ID != created.ID {
		t.Errorf("Expected the one tabulation listed, got %+v", list.Tabulations)
	}

	// Audit text
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/tabulations/"+created.ID+"/audit", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Source: primary.csv") {
		t.Errorf("Expected the source in the audit text, got:\n%s", w.Body.String())
	}

	// Verify with the issued seal
	req := httptest.NewRequest("POST", "/tabulations/"+created.ID+"/verify", nil)
	req.Header.Set("X-Audit-Seal", seal)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var verified models.VerifyResponse
	if err := json.NewDecoder(w.Body).Decode(&verified); err != nil {
		t.Fatal(err)
	}
	if !verified.Valid {
		t.Error("Expected the issued seal to verify")
	}
}
