// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Table source backends.
const (
	SourceSQLite = "sqlite"
	SourceDuckDB = "duckdb"
)

// Config holds the configuration for the HTTP service and the CLI.
type Config struct {
	// S3 fields are optional; nil when not configured. They feed the
	// DuckDB httpfs secret used to read ledger exports from object storage.
	S3KeyID    *string
	S3Secret   *string
	S3Endpoint *string
	S3Region   *string

	LedgerDBPath string // path to the SQLite ledger file
	DuckDBPath   string // DuckDB database path (empty = in-memory)
	CSVDir       string // directory of CSV table exports for the DuckDB source
	MappingFile  string // YAML source mapping (empty = identity mapping)
	Source       string // table source backend: "sqlite" (default) or "duckdb"

	ListenAddr        string // HTTP listen address (default ":8080")
	TLSCertFile       string // TLS certificate file path (optional)
	TLSKeyFile        string // TLS private key file path (optional)
	AllowInsecureHTTP bool   // allow non-TLS listener in production (for trusted TLS termination)
	LogLevel          string // log level: debug, info, warn, error (default "info")
	Env               string // environment: "development" (default) or "production"

	// JWTSecret is the HS256 shared secret for bearer auth on /v1.
	// Auth is disabled when empty.
	JWTSecret string

	MaxTraceDepth int // traversal depth bound (default 10)
	MaxBatchLots  int // upper bound on lots per batch trace request (default 100)

	ReindexCron    string // cron spec for scheduled snapshot rebuilds (empty disables)
	ReindexOnStart bool   // build the first snapshot during startup (default true)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AuthEnabled returns true when bearer auth should guard the /v1 routes.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// HasS3Config returns true if all required S3 fields are set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil &&
		c.S3Endpoint != nil && c.S3Region != nil
}

// LoadFromEnv loads configuration from environment variables.
// S3 variables are optional; the service can start without them.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LedgerDBPath:   os.Getenv("LEDGER_DB_PATH"),
		DuckDBPath:     os.Getenv("DUCKDB_PATH"),
		CSVDir:         os.Getenv("CSV_DIR"),
		MappingFile:    os.Getenv("MAPPING_FILE"),
		Source:         strings.ToLower(strings.TrimSpace(os.Getenv("SOURCE"))),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		TLSCertFile:    os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:     os.Getenv("TLS_KEY_FILE"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Env:            os.Getenv("ENV"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ReindexCron:    os.Getenv("REINDEX_CRON"),
		ReindexOnStart: parseBoolEnvDefault("REINDEX_ON_START", true),
	}

	if v := os.Getenv("MAX_TRACE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTraceDepth = n
		}
	}
	if v := os.Getenv("MAX_BATCH_LOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBatchLots = n
		}
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// S3 fields are optional; only set if present.
	if v := os.Getenv("KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := os.Getenv("SECRET"); v != "" {
		cfg.S3Secret = &v
	}
	if v := os.Getenv("ENDPOINT"); v != "" {
		cfg.S3Endpoint = &v
	}
	if v := os.Getenv("REGION"); v != "" {
		cfg.S3Region = &v
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}
	if strings.EqualFold(os.Getenv("ALLOW_INSECURE_HTTP"), "true") {
		cfg.AllowInsecureHTTP = true
	}

	// Defaults
	if cfg.LedgerDBPath == "" {
		cfg.LedgerDBPath = "beantrace.sqlite"
	}
	if cfg.Source == "" {
		cfg.Source = SourceSQLite
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxTraceDepth == 0 {
		cfg.MaxTraceDepth = 10
	}
	if cfg.MaxBatchLots == 0 {
		cfg.MaxBatchLots = 100
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// Validation
	if cfg.Source != SourceSQLite && cfg.Source != SourceDuckDB {
		return nil, fmt.Errorf("SOURCE must be %q or %q, got %q", SourceSQLite, SourceDuckDB, cfg.Source)
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, fmt.Errorf("both TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if cfg.MaxTraceDepth < 1 {
		return nil, fmt.Errorf("MAX_TRACE_DEPTH must be at least 1, got %d", cfg.MaxTraceDepth)
	}
	if cfg.MaxBatchLots < 1 {
		return nil, fmt.Errorf("MAX_BATCH_LOTS must be at least 1, got %d", cfg.MaxBatchLots)
	}

	if !cfg.AuthEnabled() {
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set; /v1 endpoints are unauthenticated")
	}
	if cfg.Source == SourceDuckDB && cfg.CSVDir == "" {
		cfg.Warnings = append(cfg.Warnings, "SOURCE=duckdb without CSV_DIR; tables come from the attached SQLite ledger")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.AuthEnabled() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if cfg.TLSCertFile == "" && !cfg.AllowInsecureHTTP {
			return nil, fmt.Errorf("TLS_CERT_FILE/TLS_KEY_FILE must be set in production unless ALLOW_INSECURE_HTTP=true")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
