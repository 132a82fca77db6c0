package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maraichr/gdcgraph/internal/bootstrap"
	"github.com/maraichr/gdcgraph/internal/gdc"
	"github.com/maraichr/gdcgraph/internal/ingestion"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// loader downloads one filtered GDC batch and ingests it into Neo4j.
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

	gdcClient, cleanup := bootstrap.GDCClient(ctx, cfg, logger)
	defer cleanup()

	metrics := ingestion.NewMetrics(prometheus.NewRegistry())
	loader := ingestion.NewLoader(graphClient, cfg.Loader, metrics, logger)

	pipeline := ingestion.NewPipeline([]ingestion.Stage{
		ingestion.NewDownloadStage(gdcClient, gdc.FilterFromConfig(cfg.GDC)),
		ingestion.NewLoadStage(loader),
	}, logger)

	rc := &ingestion.RunContext{DataDir: cfg.GDC.OutputDir}
	if err := pipeline.Run(ctx, rc); err != nil {
		logger.Error("ingestion failed", apierr.Attr(err))
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		slog.String("manifest", rc.MetadataFile),
		slog.Int("files_downloaded", rc.FilesDownloaded),
		slog.Int("expressions", rc.Stats.Expressions),
	)
}
