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

// Object store backend names accepted in OBJECT_STORE.
const (
	StoreGCS   = "gcs"
	StoreS3    = "s3"
	StoreAzure = "azure"
)

// Config holds the configuration for the pipeline services.
type Config struct {
	LandingBucket string // bucket watched for raw uploads
	BronzeBucket  string // bucket holding the partitioned bronze layer

	ObjectStore      string  // "gcs", "s3", or "azure"
	GCSCredentials   string  // path to a service account key file (optional)
	S3KeyID          *string // S3 fields are optional — nil when not configured
	S3Secret         *string
	S3Endpoint       *string
	S3Region         *string
	AzureAccountName string // Azure storage account name
	AzureAccountKey  string // Azure shared key

	MetaDBPath  string        // path to the SQLite marker/provenance store
	WarehouseDB string        // path to the DuckDB warehouse file
	LeaseTTL    time.Duration // partition lease expiry (0 = repository default)

	ListenAddr    string // HTTP listen address (default ":8080")
	LogLevel      string // log level: debug, info, warn, error (default "info")
	Env           string // environment: "development" (default) or "production"
	TransformCron string // cron spec for scheduled transformer runs (empty = disabled)

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

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasS3Config returns true if all required S3 fields are set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil && c.S3Region != nil
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LandingBucket:    os.Getenv("LANDING_BUCKET"),
		BronzeBucket:     os.Getenv("BRONZE_BUCKET"),
		ObjectStore:      strings.ToLower(os.Getenv("OBJECT_STORE")),
		GCSCredentials:   os.Getenv("GCS_CREDENTIALS_FILE"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		MetaDBPath:       os.Getenv("META_DB_PATH"),
		WarehouseDB:      os.Getenv("WAREHOUSE_DB_PATH"),
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Env:              os.Getenv("ENV"),
		TransformCron:    os.Getenv("TRANSFORM_CRON"),
	}

	// S3 fields are optional — only set if present
	if v := os.Getenv("S3_KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := os.Getenv("S3_SECRET"); v != "" {
		cfg.S3Secret = &v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3Endpoint = &v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.S3Region = &v
	}

	if v := os.Getenv("LEASE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LeaseTTL = d
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

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.ObjectStore == "" {
		cfg.ObjectStore = StoreGCS
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "lakeflow_meta.sqlite"
	}
	if cfg.WarehouseDB == "" {
		cfg.WarehouseDB = "lakeflow.duckdb"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
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
	switch cfg.ObjectStore {
	case StoreGCS, StoreS3, StoreAzure:
	default:
		return nil, fmt.Errorf("invalid OBJECT_STORE %q: must be gcs, s3, or azure", cfg.ObjectStore)
	}
	if cfg.LandingBucket == "" {
		return nil, fmt.Errorf("LANDING_BUCKET is required")
	}
	if cfg.BronzeBucket == "" {
		return nil, fmt.Errorf("BRONZE_BUCKET is required")
	}
	if cfg.ObjectStore == StoreS3 && !cfg.HasS3Config() {
		return nil, fmt.Errorf("S3_KEY_ID, S3_SECRET and S3_REGION are required when OBJECT_STORE=s3")
	}
	if cfg.ObjectStore == StoreAzure && (cfg.AzureAccountName == "" || cfg.AzureAccountKey == "") {
		return nil, fmt.Errorf("AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY are required when OBJECT_STORE=azure")
	}
	if cfg.ObjectStore == StoreGCS && cfg.GCSCredentials == "" {
		cfg.Warnings = append(cfg.Warnings,
			"GCS_CREDENTIALS_FILE not set — falling back to application default credentials")
	}
	if cfg.TransformCron == "" {
		cfg.Warnings = append(cfg.Warnings,
			"TRANSFORM_CRON not set — transformer runs only on manual trigger")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be in KEY=VALUE format. Comments (#) and blank
// lines are skipped.
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
