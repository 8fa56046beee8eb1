// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/endless/internal/api"
	"github.com/tomtom215/endless/internal/config"
	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/recommend/storage"
	"github.com/tomtom215/endless/internal/supervisor"
	"github.com/tomtom215/endless/internal/supervisor/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

// buildServer wires catalog, store, sessions and router into an http.Server.
// The returned registry must be closed after the server stops.
func buildServer(ctx context.Context, cfg *config.Config) (*http.Server, *api.SessionRegistry, error) {
	logger := logging.Logger()

	records, err := loadCatalog(ctx, cfg, logging.WithComponent("catalog"))
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.Open(cfg.Store())
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	logger.Info().
		Str("backend", cfg.Storage.Backend).
		Str("path", cfg.Storage.Path).
		Msg("snapshot store opened")

	registry, err := api.NewSessionRegistry(api.RegistryConfig{
		MaxSessions: cfg.Sessions.MaxSessions,
		IdleTimeout: cfg.Sessions.IdleTimeout,
		Autosave:    cfg.Sessions.Autosave,
	}, newEngineFactory(cfg, records, logging.WithComponent("engine")), store, logging.WithComponent("sessions"))
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("create session registry: %w", err)
	}

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitDisabled

	router := api.NewRouter(api.NewHandler(registry, version), api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return server, registry, nil
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("version", version).Msg("starting endless")

	server, registry, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.Logger()), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddSessionService(services.NewSessionJanitorService(registry, cfg.Sessions.JanitorInterval, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	logging.Info().Str("addr", server.Addr).Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree error")
		serveErr = err
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	// ctx is done by now; saving sessions gets a fresh deadline.
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := registry.Close(closeCtx); err != nil {
		logging.Error().Err(err).Msg("failed to persist sessions on shutdown")
		serveErr = errors.Join(serveErr, err)
	}
	if err := registry.Store().Close(); err != nil {
		logging.Error().Err(err).Msg("failed to close snapshot store")
		serveErr = errors.Join(serveErr, err)
	}

	logging.Info().Msg("endless stopped")
	return serveErr
}
