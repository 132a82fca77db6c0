package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkauth "github.com/modelcontextprotocol/go-sdk/auth"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/modelcontextprotocol/go-sdk/oauthex"

	"github.com/maraichr/gdcgraph/internal/auth"
	"github.com/maraichr/gdcgraph/internal/bootstrap"
	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/mcp/tools"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		bootstrap.NewLogger(os.Stdout, slog.LevelInfo).Error("failed to load config", apierr.Attr(err))
		os.Exit(1)
	}
	logger := bootstrap.NewLogger(os.Stdout, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	graphClient, err := bootstrap.Graph(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to neo4j", apierr.Attr(err))
		os.Exit(1)
	}
	defer graphClient.Close(context.Background())

	translator := bootstrap.Translator(ctx, cfg, graphClient, logger)

	sdkServer := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "gdcgraph", Version: "1.0.0"}, nil)
	tools.Register(sdkServer, translator, graphClient, logger)

	// Tools keep no per-session state.
	sdkHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return sdkServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	mux := http.NewServeMux()
	mcpHandler, err := protect(ctx, cfg, mux, sdkHandler, logger)
	if err != nil {
		logger.Error("failed to init OIDC verifier for MCP", apierr.Attr(err))
		os.Exit(1)
	}

	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/", mcpHandler)

	httpServer := &http.Server{Addr: cfg.MCP.Addr, Handler: mux}

	go func() {
		logger.Info("MCP server listening", slog.String("addr", cfg.MCP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP HTTP server error", apierr.Attr(err))
		}
	}()

	<-ctx.Done()
	logger.Info("MCP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("MCP HTTP shutdown", apierr.Attr(err))
	}
	logger.Info("MCP server stopped")
}

// protect wraps h with bearer-token auth when enabled, registering the
// protected-resource metadata document on mux when a public base URL is set.
func protect(ctx context.Context, cfg *config.Config, mux *http.ServeMux, h http.Handler, logger *slog.Logger) (http.Handler, error) {
	if !cfg.Auth.Enabled {
		return h, nil
	}
	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}

	var opts sdkauth.RequireBearerTokenOptions
	if cfg.MCP.BaseURL != "" {
		opts.ResourceMetadataURL = cfg.MCP.BaseURL + prmPath
		mux.Handle(prmPath, sdkauth.ProtectedResourceMetadataHandler(resourceMetadata(cfg)))
	}
	logger.Info("MCP OIDC auth enabled", slog.String("issuer", cfg.Auth.IssuerURL))
	return sdkauth.RequireBearerToken(auth.NewMCPTokenVerifier(verifier), &opts)(h), nil
}

const prmPath = "/.well-known/oauth-protected-resource"

func resourceMetadata(cfg *config.Config) *oauthex.ProtectedResourceMetadata {
	issuer := cfg.Auth.PublicIssuer
	if issuer == "" {
		issuer = cfg.Auth.IssuerURL
	}
	return &oauthex.ProtectedResourceMetadata{
		Resource:               cfg.MCP.BaseURL,
		AuthorizationServers:   []string{issuer},
		ScopesSupported:        []string{"openid", auth.ScopeRead},
		BearerMethodsSupported: []string{"header"},
		ResourceName:           "gdcgraph expression graph",
	}
}
