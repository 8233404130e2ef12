// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/vote-easy/audit"
	"github.com/danielhkuo/vote-easy/auth"
	"github.com/danielhkuo/vote-easy/cliparse"
	"github.com/danielhkuo/vote-easy/db"
	"github.com/danielhkuo/vote-easy/ingest"
	"github.com/danielhkuo/vote-easy/middleware"
	"github.com/danielhkuo/vote-easy/models"
	"github.com/danielhkuo/vote-easy/normalize"
	"github.com/danielhkuo/vote-easy/tabulate"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type TabulationHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	sealKey []byte
}

// NewTabulationHandler derives the audit seal key from cfg.AuditSecret. With
// no secret, trails are stored unsealed.
func NewTabulationHandler(db *sql.DB, cfg cliparse.Config) *TabulationHandler {
	h := &TabulationHandler{db: db, cfg: cfg}
	if cfg.AuditSecret != "" {
		h.sealKey = auth.DeriveSealKey(cfg.AuditSecret)
	}
	return h
}

// submission is an election read from a request, plus where it came from
type submission struct {
	election tabulate.Election
	source   string
	file     *ingest.File
}

// Create handles POST /tabulations. The body is either a JSON
// TabulateRequest or a raw election file.
func (h *TabulationHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, status, msg := h.readSubmission(w, r)
	if status != 0 {
		middleware.ErrorResponse(w, status, msg)
		return
	}

	trail := audit.NewTrail(sub.election.Protocol, sub.source)
	res, err := tabulate.Run(sub.election,
		tabulate.WithRecorder(trail),
		tabulate.WithLogger(slog.Default()),
	)
	if err != nil {
		if isInputError(err) {
			msg := err.Error()
			if sub.file != nil {
				if line, ok := sub.file.BallotLineOf(err); ok {
					msg = fmt.Sprintf("line %d: %s", line, msg)
				}
			}
			middleware.ErrorResponse(w, http.StatusBadRequest, msg)
			return
		}
		slog.Error("tabulation failed", "tabulation_id", trail.ID(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Tabulation failed")
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		slog.Error("failed to encode result", "tabulation_id", trail.ID(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to encode result")
		return
	}
	auditText, err := trail.Bytes()
	if err != nil {
		slog.Error("failed to render audit trail", "tabulation_id", trail.ID(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render audit trail")
		return
	}

	var seal string
	if h.sealKey != nil {
		seal = auth.SealAudit(trail.ID(), auditText, h.sealKey)
	}

	t := db.Tabulation{
		ID:         trail.ID(),
		Protocol:   res.Protocol(),
		Source:     sub.source,
		Ballots:    res.BallotCount(),
		Seats:      res.SeatCount(),
		Winners:    tabulate.WinnerNames(res),
		ComputedAt: time.Now().UTC(),
		Payload:    payload,
		AuditText:  string(auditText),
		AuditSeal:  seal,
		Entries:    trail.Entries(),
	}
	if err := db.SaveTabulation(r.Context(), h.db, t); err != nil {
		slog.Error("failed to save tabulation", "tabulation_id", t.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save tabulation")
		return
	}

	slog.Info("tabulation stored",
		"tabulation_id", t.ID,
		"protocol", t.Protocol,
		"source", t.Source,
		"ballots", t.Ballots,
		"winners", t.Winners,
	)

	w.Header().Set("X-Tabulation-Id", t.ID)
	if seal != "" {
		w.Header().Set("X-Audit-Seal", seal)
	}
	middleware.JSONResponse(w, http.StatusCreated, t.Response())
}

// readSubmission decodes the request body. A nonzero status and its message
// are returned when the body is unusable.
func (h *TabulationHandler) readSubmission(w http.ResponseWriter, r *http.Request) (submission, int, string) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req models.TabulateRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			return submission{}, http.StatusBadRequest, "Invalid JSON"
		}
		protocol := models.Protocol(strings.ToUpper(string(req.Protocol)))
		if !protocol.Valid() {
			return submission{}, http.StatusBadRequest, fmt.Sprintf("protocol must be one of IR, OPL or MPO, got %q", req.Protocol)
		}
		if strings.TrimSpace(req.Candidates) == "" {
			return submission{}, http.StatusBadRequest, "candidates is required"
		}
		source := req.Name
		if source == "" {
			source = "api"
		}
		return submission{
			election: tabulate.Election{
				Protocol:   protocol,
				Candidates: req.Candidates,
				Seats:      req.Seats,
				Ballots:    req.Ballots,
			},
			source: source,
		}, 0, ""
	}

	body, err := middleware.ReadBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return submission{}, http.StatusRequestEntityTooLarge, "Election file too large"
		}
		return submission{}, http.StatusBadRequest, "Failed to read request body"
	}
	file, err := ingest.Parse(bytes.NewReader(body))
	if err != nil {
		return submission{}, http.StatusBadRequest, err.Error()
	}
	file.Source = r.URL.Query().Get("source")
	if file.Source == "" {
		file.Source = "upload"
	}
	return submission{election: file.Election, source: file.Source, file: file}, 0, ""
}

// isInputError reports whether err was caused by the submitted election
// rather than by the server
func isInputError(err error) bool {
	for _, target := range []error{
		normalize.ErrMalformedDescriptor,
		normalize.ErrMalformedBallot,
		ingest.ErrMalformedFile,
		tabulate.ErrUnknownProtocol,
		tabulate.ErrInvalidSeats,
		tabulate.ErrNoBallots,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// List handles GET /tabulations
func (h *TabulationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = min(n, maxListLimit)
	}

	rows, err := db.ListTabulations(r.Context(), h.db, limit)
	if err != nil {
		slog.Error("failed to list tabulations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	out := models.TabulationList{Tabulations: make([]models.TabulationResponse, len(rows))}
	for i, t := range rows {
		out.Tabulations[i] = t.Response()
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}

// Get handles GET /tabulations/{id}
func (h *TabulationHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if t.AuditSeal != "" {
		w.Header().Set("X-Audit-Seal", t.AuditSeal)
	}
	middleware.JSONResponse(w, http.StatusOK, t.Response())
}

// GetAudit handles GET /tabulations/{id}/audit. The rendered trail is
// returned as text; ?format=json returns the entries instead.
func (h *TabulationHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		id := r.PathValue("id")
		entries, err := db.GetAuditEntries(r.Context(), h.db, id)
		if errors.Is(err, db.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Tabulation not found")
			return
		}
		if err != nil {
			slog.Error("failed to load audit entries", "tabulation_id", id, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, entries)
		return
	}

	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if t.AuditSeal != "" {
		w.Header().Set("X-Audit-Seal", t.AuditSeal)
	}
	middleware.TextResponse(w, http.StatusOK, t.AuditText)
}

// Verify handles POST /tabulations/{id}/verify. It checks the stored trail
// against the stored seal, or against the seal in X-Audit-Seal when given.
func (h *TabulationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.sealKey == nil {
		middleware.ErrorResponse(w, http.StatusNotImplemented, "Audit sealing is not configured")
		return
	}

	t, ok := h.load(w, r)
	if !ok {
		return
	}

	seal := r.Header.Get("X-Audit-Seal")
	if seal == "" {
		seal = t.AuditSeal
	}
	if seal == "" {
		middleware.ErrorResponse(w, http.StatusConflict, "Tabulation was stored without a seal")
		return
	}

	err := auth.VerifySeal(t.ID, []byte(t.AuditText), seal, h.sealKey)
	if err != nil {
		slog.Warn("audit seal mismatch", "tabulation_id", t.ID, "remote", middleware.GetClientIP(r))
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{
		ID:          t.ID,
		Valid:       err == nil,
		Fingerprint: auth.Fingerprint(seal),
	})
}

// load fetches the tabulation named in the path, writing the error response
// itself when it can't
func (h *TabulationHandler) load(w http.ResponseWriter, r *http.Request) (db.Tabulation, bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "tabulation id is required")
		return db.Tabulation{}, false
	}

	t, err := db.GetTabulation(r.Context(), h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Tabulation not found")
		return db.Tabulation{}, false
	}
	if err != nil {
		slog.Error("failed to load tabulation", "tabulation_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return db.Tabulation{}, false
	}
	return t, true
}
