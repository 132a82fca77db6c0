package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maraichr/gdcgraph/internal/api"
	"github.com/maraichr/gdcgraph/internal/auth"
	"github.com/maraichr/gdcgraph/internal/bootstrap"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		bootstrap.NewLogger(os.Stdout, slog.LevelInfo).Error("failed to load config", apierr.Attr(err))
		os.Exit(1)
	}
	logger := bootstrap.NewLogger(os.Stdout, cfg.Log.Level)

	ctx := context.Background()
	deps := &api.RouterDeps{Metrics: prometheus.DefaultGatherer}

	// Neo4j (optional: questions and readiness need it)
	graphClient, err := bootstrap.Graph(ctx, cfg, logger)
	if err != nil {
		logger.Warn("neo4j connection failed, questions disabled", apierr.Attr(err))
	} else {
		deps.Graph = graphClient
		deps.Asker = bootstrap.Translator(ctx, cfg, graphClient, logger)
		defer graphClient.Close(ctx)
	}

	gdcClient, cleanup := bootstrap.GDCClient(ctx, cfg, logger)
	defer cleanup()
	deps.GDC = gdcClient

	// Auth (optional: requires AUTH_ENABLED=true + issuer URL)
	if cfg.Auth.Enabled {
		verifier, err := auth.NewVerifier(ctx, cfg.Auth)
		if err != nil {
			logger.Error("failed to init OIDC verifier", apierr.Attr(err))
			os.Exit(1)
		}
		deps.Auth = append(deps.Auth, auth.RequireAuth(verifier, logger), auth.RequireScope(auth.ScopeRead))
		logger.Info("OIDC auth enabled", slog.String("issuer", cfg.Auth.IssuerURL))
	} else {
		deps.Auth = append(deps.Auth, auth.DevModeMiddleware(logger))
	}

	router := api.NewRouter(logger, deps)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", apierr.Attr(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", apierr.Attr(err))
	}

	logger.Info("server stopped")
}
