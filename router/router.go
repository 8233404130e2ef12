// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/vote-easy/cliparse"
	"github.com/danielhkuo/vote-easy/handlers"
	"github.com/danielhkuo/vote-easy/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	tabulationHandler := handlers.NewTabulationHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Tabulation runs
	mux.HandleFunc("POST /tabulations", middleware.WithLogging(tabulationHandler.Create))
	mux.HandleFunc("GET /tabulations", middleware.WithLogging(tabulationHandler.List))
	mux.HandleFunc("GET /tabulations/{id}", middleware.WithLogging(tabulationHandler.Get))

	// Audit trails
	mux.HandleFunc("GET /tabulations/{id}/audit", middleware.WithLogging(tabulationHandler.GetAudit))
	mux.HandleFunc("POST /tabulations/{id}/verify", middleware.WithLogging(tabulationHandler.Verify))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("vote-easy API v1"))
	})

	return mux
}
