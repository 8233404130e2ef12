package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/vote-easy/audit"
	"github.com/danielhkuo/vote-easy/auth"
	"github.com/danielhkuo/vote-easy/cliparse"
	"github.com/danielhkuo/vote-easy/db"
	"github.com/danielhkuo/vote-easy/ingest"
	"github.com/danielhkuo/vote-easy/middleware"
	"github.com/danielhkuo/vote-easy/router"
	"github.com/danielhkuo/vote-easy/tabulate"
)

func main() {
	if err := cliparse.LoadEnv(); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.Serve {
		err = serve(cfg)
	} else {
		err = tabulateFile(cfg)
	}
	if err != nil {
		slog.Error("vote-easy failed", "error", err)
		os.Exit(1)
	}
}

// tabulateFile runs the election in cfg.ElectionFile, writes the audit file
// and prints the result. The run is also stored when a database is set.
func tabulateFile(cfg cliparse.Config) error {
	file, err := ingest.ReadFile(cfg.ElectionFile)
	if err != nil {
		return err
	}

	trail := audit.NewTrail(file.Election.Protocol, file.Source)
	res, err := tabulate.Run(file.Election, tabulate.WithRecorder(trail))
	if err != nil {
		if line, ok := file.BallotLineOf(err); ok {
			return fmt.Errorf("%s: line %d: %w", file.Source, line, err)
		}
		return err
	}

	if err := trail.WriteFile(cfg.AuditPath); err != nil {
		return err
	}
	slog.Info("audit file written", "path", cfg.AuditPath, "tabulation_id", trail.ID())

	if err := audit.WriteSummary(os.Stdout, res); err != nil {
		return err
	}

	auditText, err := trail.Bytes()
	if err != nil {
		return err
	}
	var seal string
	if cfg.AuditSecret != "" {
		seal = auth.SealAudit(trail.ID(), auditText, auth.DeriveSealKey(cfg.AuditSecret))
		fmt.Printf("\nAudit seal: %s (fingerprint %s)\n", seal, auth.Fingerprint(seal))
	}

	if cfg.DatabaseURL == "" {
		return nil
	}

	dbConn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = db.SaveTabulation(ctx, dbConn, db.Tabulation{
		ID:         trail.ID(),
		Protocol:   res.Protocol(),
		Source:     file.Source,
		Ballots:    res.BallotCount(),
		Seats:      res.SeatCount(),
		Winners:    tabulate.WinnerNames(res),
		ComputedAt: time.Now().UTC(),
		Payload:    payload,
		AuditText:  string(auditText),
		AuditSeal:  seal,
		Entries:    trail.Entries(),
	})
	if err != nil {
		return err
	}
	slog.Info("tabulation stored", "tabulation_id", trail.ID())
	return nil
}

func openDatabase(cfg cliparse.Config) (*sql.DB, error) {
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)
	return dbConn, nil
}

func serve(cfg cliparse.Config) error {
	dbConn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if cfg.AuditSecret == "" {
		slog.Warn("AUDIT_SECRET not set; audit trails will be stored unsealed")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("Server closed")
	return nil
}
