package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadFromEnv reads so tests are hermetic.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LANDING_BUCKET", "BRONZE_BUCKET", "OBJECT_STORE", "GCS_CREDENTIALS_FILE",
		"S3_KEY_ID", "S3_SECRET", "S3_ENDPOINT", "S3_REGION",
		"AZURE_ACCOUNT_NAME", "AZURE_ACCOUNT_KEY",
		"META_DB_PATH", "WAREHOUSE_DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "ENV",
		"TRANSFORM_CRON", "LEASE_TTL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "bronze")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "landing", cfg.LandingBucket)
	assert.Equal(t, "bronze", cfg.BronzeBucket)
	assert.Equal(t, StoreGCS, cfg.ObjectStore)
	assert.Equal(t, "lakeflow_meta.sqlite", cfg.MetaDBPath)
	assert.Equal(t, "lakeflow.duckdb", cfg.WarehouseDB)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.LeaseTTL)

	// No credentials file and no cron are warnings, not errors.
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoadFromEnv_LeaseTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "bronze")
	t.Setenv("LEASE_TTL", "30m")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.LeaseTTL)
}

func TestLoadFromEnv_RequiredBuckets(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRONZE_BUCKET", "bronze")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LANDING_BUCKET")

	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRONZE_BUCKET")
}

func TestLoadFromEnv_InvalidObjectStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "bronze")
	t.Setenv("OBJECT_STORE", "ftp")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OBJECT_STORE")
}

func TestLoadFromEnv_S3RequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "bronze")
	t.Setenv("OBJECT_STORE", "s3")

	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("S3_KEY_ID", "key")
	t.Setenv("S3_SECRET", "secret")
	t.Setenv("S3_REGION", "us-east-1")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.HasS3Config())
	assert.Nil(t, cfg.S3Endpoint)
}

func TestLoadFromEnv_AzureRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "bronze")
	t.Setenv("OBJECT_STORE", "azure")

	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("AZURE_ACCOUNT_NAME", "acct")
	t.Setenv("AZURE_ACCOUNT_KEY", "key")
	_, err = LoadFromEnv()
	require.NoError(t, err)
}

func TestLoadFromEnv_ProductionRejectsCORSWildcard(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANDING_BUCKET", "landing")
	t.Setenv("BRONZE_BUCKET", "bronze")
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "WARN", want: slog.LevelWarn},
		{level: "warning", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "bogus", want: slog.LevelInfo},
		{level: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nLANDING_BUCKET=landing\nBRONZE_BUCKET=\"bronze\"\nLOG_LEVEL='debug'\nNOT_A_PAIR\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Pre-set values win over the file.
	t.Setenv("LOG_LEVEL", "error")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "landing", os.Getenv("LANDING_BUCKET"))
	assert.Equal(t, "bronze", os.Getenv("BRONZE_BUCKET"))
	assert.Equal(t, "error", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
