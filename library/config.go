package library

import (
	"log/slog"
	"os"
	"strings"
)

// Config carries environment-supplied defaults. Command-line flags override
// these at the CLI layer.
type Config struct {
	Env     string
	DBPath  string
	Archive bool
}

// LoadConfig reads configuration from the environment with sensible defaults.
func LoadConfig() Config {
	return Config{
		Env:     getEnv("LIBRARY_ENV", "local"),
		DBPath:  getEnv("LIBRARY_DB", "library.db"),
		Archive: getEnvBool("LIBRARY_ARCHIVE", false),
	}
}

// NewLogger builds the process logger: JSON output for prod-like
// environments, plain text otherwise. Diagnostics go to stderr so the
// report file and stdout summary stay clean.
func NewLogger(env string) *slog.Logger {
	if env == "prod" || env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}
