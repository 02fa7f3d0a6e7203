package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/edugames/internal/factory"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EDUGAMES_JWT_SECRET", "s3cret")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, factory.StorageTypeMemory, cfg.Storage)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EDUGAMES_JWT_SECRET", "s3cret")
	t.Setenv("EDUGAMES_ADDR", ":9090")
	t.Setenv("EDUGAMES_STORAGE", "Redis")
	t.Setenv("EDUGAMES_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("EDUGAMES_TOKEN_TTL", "90m")
	t.Setenv("EDUGAMES_BCRYPT_COST", "12")
	t.Setenv("EDUGAMES_LOG_LEVEL", "debug")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, factory.StorageTypeRedis, cfg.Storage)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	fc := cfg.Factory(nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Nil(t, fc.PostgresConfig)
	assert.Equal(t, []byte("s3cret"), fc.Credentials.Secret)
	assert.Equal(t, ":9090", cfg.Server().Addr)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"EDUGAMES_JWT_SECRET=from-file\nEDUGAMES_STORAGE=postgres\nEDUGAMES_POSTGRES_URL=postgres://db/edugames\n",
	), 0600))
	// godotenv never overrides variables that are already set; t.Setenv restores them afterwards
	t.Setenv("EDUGAMES_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("EDUGAMES_JWT_SECRET"))
	t.Setenv("EDUGAMES_STORAGE", "")
	require.NoError(t, os.Unsetenv("EDUGAMES_STORAGE"))
	t.Setenv("EDUGAMES_POSTGRES_URL", "")
	require.NoError(t, os.Unsetenv("EDUGAMES_POSTGRES_URL"))

	cfg, err := Load(viper.New(), "", envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	fc := cfg.Factory(nil)
	require.NotNil(t, fc.PostgresConfig)
	assert.Equal(t, "postgres://db/edugames", fc.PostgresConfig.URL)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("EDUGAMES_JWT_SECRET", "s3cret")
	file := filepath.Join(t.TempDir(), "edugames.yaml")
	require.NoError(t, os.WriteFile(file, []byte("addr: \":7070\"\nlog_level: warn\n"), 0600))

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("EDUGAMES_JWT_SECRET", "s3cret")

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Storage:    factory.StorageTypeMemory,
		JWTSecret:  "s3cret",
		BcryptCost: 10,
		TokenTTL:   time.Hour,
		LogLevel:   "info",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "jwt_secret"},
		{"unknown storage", func(c *Config) { c.Storage = "mongo" }, "storage"},
		{"redis without url", func(c *Config) { c.Storage = factory.StorageTypeRedis }, "redis_url"},
		{"postgres without url", func(c *Config) { c.Storage = factory.StorageTypePostgres }, "postgres_url"},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 2 }, "bcrypt_cost"},
		{"non-positive ttl", func(c *Config) { c.TokenTTL = 0 }, "token_ttl"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "slog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
