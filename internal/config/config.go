// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// RedshiftConfig holds Redshift Data API connection settings.
type RedshiftConfig struct {
	ClusterID string // cluster identifier, or parsed from Endpoint when empty
	Endpoint  string // cluster endpoint host (optional when ClusterID is set)
	Database  string // warehouse database name (default "book_sales")
	User      string // database user for the Data API
	Region    string // AWS region (default "us-east-2")

	PollInterval time.Duration // statement status poll interval (default 2s)
	Timeout      time.Duration // statement completion deadline (default 300s)
}

// Configured returns true when enough is set to reach a cluster.
func (r *RedshiftConfig) Configured() bool {
	return r.ClusterID != "" || r.Endpoint != ""
}

// ClusterIdentifier prefers the explicit identifier, falling back to the
// first label of the endpoint host (<cluster>.<hash>.<region>.redshift...).
func (r *RedshiftConfig) ClusterIdentifier() string {
	if r.ClusterID != "" {
		return r.ClusterID
	}
	host, _, _ := strings.Cut(r.Endpoint, ".")
	return host
}

// Config holds configuration for the HTTP API, ETL, and warehouse backends.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // debug, info, warn, error (default "info")
	Env        string // "development" (default) or "production"
	Version    string // reported by /health

	// Redshift is the remote warehouse. When not configured the server runs
	// against an embedded DuckDB database instead.
	Redshift RedshiftConfig

	// S3 staging for COPY-based loads. Optional; without it remote loads
	// fall back to batched inserts through the Data API.
	S3KeyID  *string
	S3Secret *string
	S3Region *string
	S3Bucket *string
	S3RoleARN string // IAM role the cluster assumes for COPY

	DataDir    string // directory holding users.csv, books.csv, transactions.csv
	LocalDBPath string // DuckDB file for local mode ("" = in-memory)

	// RefreshSchedule is a cron expression for periodic summary rebuilds.
	// Empty disables the scheduler.
	RefreshSchedule string

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins (default ["*"])

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

// HasS3Config returns true if all fields needed for COPY staging are set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil && c.S3Region != nil && c.S3Bucket != nil
}

// LoadFromEnv loads configuration from environment variables. Redshift and S3
// variables are optional — the app can start fully local without them.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		Env:             os.Getenv("ENV"),
		DataDir:         os.Getenv("DATA_DIR"),
		LocalDBPath:     os.Getenv("LOCAL_DB_PATH"),
		RefreshSchedule: os.Getenv("REFRESH_SCHEDULE"),
		S3RoleARN:       os.Getenv("REDSHIFT_ROLE_ARN"),
		Redshift: RedshiftConfig{
			ClusterID: os.Getenv("REDSHIFT_CLUSTER"),
			Endpoint:  os.Getenv("REDSHIFT_ENDPOINT"),
			Database:  os.Getenv("REDSHIFT_DB"),
			User:      os.Getenv("REDSHIFT_USER"),
			Region:    os.Getenv("AWS_REGION"),
		},
	}

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
	if v := os.Getenv("STATEMENT_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Redshift.PollInterval = d
		}
	}
	if v := os.Getenv("STATEMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Redshift.Timeout = d
		}
	}

	// S3 staging fields are optional — only set if present
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.S3Secret = &v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.S3Region = &v
	}
	if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		cfg.S3Bucket = &v
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Version == "" {
		cfg.Version = "2.0.0"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Redshift.Database == "" {
		cfg.Redshift.Database = "book_sales"
	}
	if cfg.Redshift.User == "" {
		cfg.Redshift.User = "admin"
	}
	if cfg.Redshift.Region == "" {
		cfg.Redshift.Region = "us-east-2"
	}
	if cfg.Redshift.PollInterval == 0 {
		cfg.Redshift.PollInterval = 2 * time.Second
	}
	if cfg.Redshift.Timeout == 0 {
		cfg.Redshift.Timeout = 300 * time.Second
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

	if !cfg.Redshift.Configured() {
		cfg.Warnings = append(cfg.Warnings,
			"REDSHIFT_CLUSTER/REDSHIFT_ENDPOINT not set — running against embedded DuckDB")
	}
	if cfg.Redshift.Configured() && !cfg.HasS3Config() {
		cfg.Warnings = append(cfg.Warnings,
			"S3 staging not configured — warehouse loads will use batched inserts instead of COPY")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Redshift.Configured() {
			return nil, fmt.Errorf("REDSHIFT_CLUSTER or REDSHIFT_ENDPOINT must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
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
		value = stripQuotes(strings.TrimSpace(value))
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
