package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/edugames/internal/api/apierr"
	"github.com/mcoot/edugames/internal/api/handler"
	"github.com/mcoot/edugames/internal/api/middleware"
	"github.com/mcoot/edugames/internal/api/response"
	"github.com/mcoot/edugames/internal/metrics"
	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/auth"
	"github.com/mcoot/edugames/internal/services/records"
	"github.com/mcoot/edugames/internal/services/users"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	UserService    *users.Service
	AuthService    *auth.Service
	RecordsService *records.Service
	// StorageBackend is reported by the health endpoint
	StorageBackend string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, nil, apierr.NewNotFoundError())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, nil, apierr.NewMethodNotAllowedError())
	})

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.UserService, cfg.AuthService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.RecordsService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		api.Use(middleware.Metrics(cfg.Metrics))
	}

	// Fixed paths are registered before /users/{id} so they are not captured by it
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)
	api.Handle("/users/me", authMiddleware(http.HandlerFunc(userHandler.GetMe))).Methods(http.MethodGet)

	// User routes
	api.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", userHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", userHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", userHandler.Delete).Methods(http.MethodDelete)

	// Game record routes, one collection per kind
	for _, kind := range model.GameKinds {
		collection := fmt.Sprintf("/users/{id}/%s-games", kind)
		api.HandleFunc(collection, gameHandler.List(kind)).Methods(http.MethodGet)
		api.HandleFunc(collection, gameHandler.Submit(kind)).Methods(http.MethodPost)
		api.HandleFunc(collection+"/{gameId}", gameHandler.Get(kind)).Methods(http.MethodGet)
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.StorageBackend)).Methods(http.MethodGet)

	// Prometheus scrape endpoint lives outside the versioned API
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: backend})
	}
}
