package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"github.com/spf13/viper"

	"github.com/mcoot/edugames/internal/api"
	"github.com/mcoot/edugames/internal/factory"
	"github.com/mcoot/edugames/internal/services/credentials"
	pgstorage "github.com/mcoot/edugames/internal/storage/postgres"
	redisstorage "github.com/mcoot/edugames/internal/storage/redis"
)

// EnvPrefix is prepended to every key when read from the environment
const EnvPrefix = "EDUGAMES"

// Config is the server process configuration. Loaded once at startup.
type Config struct {
	Addr        string        `mapstructure:"addr"`
	Storage     string        `mapstructure:"storage"`
	RedisURL    string        `mapstructure:"redis_url"`
	PostgresURL string        `mapstructure:"postgres_url"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	LogLevel    string        `mapstructure:"log_level"`
}

// SetDefaults registers every key with its default so env overrides are seen by Unmarshal
func SetDefaults(v *viper.Viper) {
	creds := credentials.DefaultConfig()

	v.SetDefault("addr", api.DefaultServerConfig().Addr)
	v.SetDefault("storage", factory.StorageTypeMemory)
	v.SetDefault("redis_url", "")
	v.SetDefault("postgres_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("bcrypt_cost", creds.BcryptCost)
	v.SetDefault("token_ttl", creds.TokenTTL)
	v.SetDefault("log_level", "info")
}

// Load reads configuration into a Config. Missing env files are skipped; values
// already in the process environment win over those in the files. If configFile
// is set it is read as well, with environment variables taking precedence.
func Load(v *viper.Viper, configFile string, envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, oops.In("config").With("file", f).Wrapf(err, "loading env file")
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, oops.In("config").With("file", configFile).Wrapf(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, oops.In("config").Wrapf(err, "decoding config")
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements
func (c Config) Validate() error {
	errb := oops.In("config")

	switch c.Storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errb.Errorf("redis_url is required when storage is redis")
		}
	case factory.StorageTypePostgres:
		if c.PostgresURL == "" {
			return errb.Errorf("postgres_url is required when storage is postgres")
		}
	default:
		return errb.With("storage", c.Storage).Errorf("storage must be memory, redis or postgres")
	}

	if c.JWTSecret == "" {
		return errb.Errorf("jwt_secret is required")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errb.With("bcrypt_cost", c.BcryptCost).Errorf("bcrypt_cost must be between 4 and 31")
	}
	if c.TokenTTL <= 0 {
		return errb.With("token_ttl", c.TokenTTL).Errorf("token_ttl must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return errb.With("log_level", c.LogLevel).Wrap(err)
	}
	return nil
}

// Level returns the slog level for LogLevel, defaulting to info
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Factory builds the application factory config
func (c Config) Factory(logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
		Credentials: credentials.Config{
			Secret:     []byte(c.JWTSecret),
			BcryptCost: c.BcryptCost,
			TokenTTL:   c.TokenTTL,
		},
	}

	switch c.Storage {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = c.PostgresURL
		fc.PostgresConfig = &pgCfg
	}
	return fc
}

// Server builds the HTTP server config
func (c Config) Server() api.ServerConfig {
	sc := api.DefaultServerConfig()
	if c.Addr != "" {
		sc.Addr = c.Addr
	}
	return sc
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(s))
	return level, err
}
