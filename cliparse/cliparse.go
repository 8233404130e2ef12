package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort      = 3318
	DefaultAuditPath = "./audit_file.txt"
)

type Config struct {
	ElectionFile string
	AuditPath    string
	Serve        bool
	Port         int
	DatabaseURL  string
	DatabaseType string
	LogLevel     string
	AuditSecret  string
}

// LoadEnv reads KEY=value pairs from the given .env files (default ".env")
// into the environment. Variables already set are left alone, and missing
// files are not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("vote-easy", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Election input
	fs.StringVar(&cfg.ElectionFile, "f", "", "Election file (or first positional argument)")
	fs.StringVar(&cfg.AuditPath, "a", "", "Audit file path")

	// Server mode (can be CLI args or env)
	fs.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP API instead of tabulating a file")
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AuditSecret, "audit-secret", "", "Audit seal secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ElectionFile == "" && fs.NArg() > 0 {
		cfg.ElectionFile = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args()[1:], " "))
	}

	// Fall back to environment variables
	if cfg.ElectionFile == "" {
		cfg.ElectionFile = os.Getenv("ELECTION_FILE")
	}
	if cfg.AuditPath == "" {
		cfg.AuditPath = os.Getenv("AUDIT_PATH")
		if cfg.AuditPath == "" {
			cfg.AuditPath = DefaultAuditPath
		}
	}
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}

	if cfg.AuditSecret == "" {
		cfg.AuditSecret = os.Getenv("AUDIT_SECRET")
	}

	if cfg.Serve {
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	} else if cfg.ElectionFile == "" {
		return Config{}, errors.New("election file required (use -f, a positional argument or ELECTION_FILE env)")
	}

	return cfg, nil
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
