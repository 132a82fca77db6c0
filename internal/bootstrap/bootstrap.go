// Package bootstrap builds the clients shared by the gdcgraph binaries from
// configuration. Optional backends that fail to connect are logged and left
// out rather than aborting startup.
package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/gdc"
	"github.com/maraichr/gdcgraph/internal/graph"
	"github.com/maraichr/gdcgraph/internal/llm"
	minioclient "github.com/maraichr/gdcgraph/internal/store/minio"
	vk "github.com/maraichr/gdcgraph/internal/store/valkey"
	"github.com/maraichr/gdcgraph/internal/text2cypher"
)

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*config.Config, error) {
	_ = godotenv.Load(".env")
	return config.Load()
}

// NewLogger returns the JSON logger used by every binary.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// GDCClient builds the GDC client with the Valkey case cache and the MinIO
// archive when they are configured. The returned func releases them.
func GDCClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gdc.Client, func()) {
	var opts []gdc.Option
	cleanup := func() {}

	if cfg.Valkey.Addr != "" {
		client, err := vk.NewClient(ctx, cfg.Valkey)
		if err != nil {
			logger.Warn("valkey unavailable, GDC lookups uncached", slog.String("error", err.Error()))
		} else {
			opts = append(opts, gdc.WithCache(vk.NewCache(client), cfg.GDC.CaseTTL))
			cleanup = client.Close
			logger.Info("connected to valkey", slog.String("addr", cfg.Valkey.Addr))
		}
	}

	if cfg.MinIO.Endpoint != "" {
		mc, err := minioclient.NewClient(cfg.MinIO)
		if err == nil {
			err = mc.EnsureBucket(ctx)
		}
		if err != nil {
			logger.Warn("minio unavailable, downloads not archived", slog.String("error", err.Error()))
		} else {
			opts = append(opts, gdc.WithArchiver(mc))
			logger.Info("connected to minio", slog.String("bucket", mc.Bucket()))
		}
	}

	return gdc.NewClient(cfg.GDC, logger, opts...), cleanup
}

// Graph connects to Neo4j and verifies connectivity.
func Graph(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*graph.Client, error) {
	client, err := graph.NewClient(cfg.Neo4j)
	if err != nil {
		return nil, err
	}
	if err := client.Verify(ctx); err != nil {
		client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to neo4j", slog.String("uri", cfg.Neo4j.ConnURI()))
	return client, nil
}

// Translator builds the question translator over q. Without a configured
// model it still returns a translator whose calls fail with LLM_UNAVAILABLE.
func Translator(ctx context.Context, cfg *config.Config, q text2cypher.Querier, logger *slog.Logger) *text2cypher.Translator {
	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		logger.Warn("llm init failed, questions disabled", slog.String("error", err.Error()))
	}
	if completer != nil {
		logger.Info("llm enabled", slog.String("model", completer.Model()))
	}
	return text2cypher.NewTranslator(completer, q, logger)
}
