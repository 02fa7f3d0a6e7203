package factory

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/mcoot/edugames/internal/api"
	"github.com/mcoot/edugames/internal/dependencies/clock"
	"github.com/mcoot/edugames/internal/dependencies/ids"
	"github.com/mcoot/edugames/internal/metrics"
	"github.com/mcoot/edugames/internal/services/auth"
	"github.com/mcoot/edugames/internal/services/credentials"
	"github.com/mcoot/edugames/internal/services/records"
	"github.com/mcoot/edugames/internal/services/users"
	"github.com/mcoot/edugames/internal/storage"
	"github.com/mcoot/edugames/internal/storage/memory"
	pgstorage "github.com/mcoot/edugames/internal/storage/postgres"
	redisstorage "github.com/mcoot/edugames/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock  clock.Clock
	IDs    ids.Generator
	Logger *slog.Logger

	// Observability
	Metrics *metrics.Metrics

	// Services
	Credentials    *credentials.Service
	UserService    *users.Service
	AuthService    *auth.Service
	RecordsService *records.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Credentials configures hashing and token signing.
	// Zero BcryptCost and TokenTTL fall back to credentials.DefaultConfig().
	Credentials credentials.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var (
		store   storage.Storage
		closers []io.Closer
	)
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, oops.In("factory").Errorf("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, oops.In("factory").With("storage", storageType).Wrap(err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, oops.In("factory").Errorf("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, oops.In("factory").With("storage", storageType).Wrap(err)
		}
		store = pgStore
		closers = append(closers, pgStore)
	default:
		return nil, oops.In("factory").
			With("storage", storageType).
			Errorf("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	app := newWithDependencies(store, clock.New(), ids.New(), cfg.Credentials, metrics.New(), logger)
	app.StorageType = storageType
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	idGen ids.Generator,
	credCfg credentials.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) *App {
	credentialService := credentials.New(credCfg, clk)
	userService := users.New(store, credentialService, clk, idGen, logger)
	authService := auth.New(userService, credentialService, logger)
	recordsService := records.New(store, clk, idGen, m, logger)

	return &App{
		Storage:        store,
		StorageType:    StorageTypeMemory,
		Clock:          clk,
		IDs:            idGen,
		Logger:         logger,
		Metrics:        m,
		Credentials:    credentialService,
		UserService:    userService,
		AuthService:    authService,
		RecordsService: recordsService,
	}
}

// Router builds the HTTP handler for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:         a.Logger,
		Metrics:        a.Metrics,
		UserService:    a.UserService,
		AuthService:    a.AuthService,
		RecordsService: a.RecordsService,
		StorageBackend: a.StorageType,
	})
}

// Close releases storage connections
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
