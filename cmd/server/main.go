package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcoot/edugames/internal/api"
	"github.com/mcoot/edugames/internal/config"
	"github.com/mcoot/edugames/internal/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile, envFile string

	cmd := &cobra.Command{
		Use:   "edugames-server",
		Short: "Run the edugames HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile, envFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file path (yaml, toml or json)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("addr", api.DefaultServerConfig().Addr, "listen address (env: EDUGAMES_ADDR)")
	flags.String("storage", factory.StorageTypeMemory, "storage backend: memory, redis, postgres (env: EDUGAMES_STORAGE)")
	flags.String("redis-url", "", "redis connection URL (env: EDUGAMES_REDIS_URL)")
	flags.String("postgres-url", "", "postgres connection URL (env: EDUGAMES_POSTGRES_URL)")
	flags.String("log-level", "info", "log level: debug, info, warn, error (env: EDUGAMES_LOG_LEVEL)")

	// Flags only override the environment when set explicitly
	for flag, key := range map[string]string{
		"addr":         "addr",
		"storage":      "storage",
		"redis-url":    "redis_url",
		"postgres-url": "postgres_url",
		"log-level":    "log_level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	server := api.NewServer(app.Router(), cfg.Server(), logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
