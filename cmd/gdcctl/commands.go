package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/maraichr/gdcgraph/internal/bootstrap"
	"github.com/maraichr/gdcgraph/internal/gdc"
	"github.com/maraichr/gdcgraph/internal/ingestion"
	"github.com/maraichr/gdcgraph/internal/ingestion/connectors"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

func (a *app) runDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	filter := gdc.FilterFromConfig(a.cfg.GDC)
	if v, _ := cmd.Flags().GetString("primary-site"); v != "" {
		filter.PrimarySite = v
	}
	if v, _ := cmd.Flags().GetStringSlice("strategy"); len(v) > 0 {
		filter.Strategies = v
	}
	if v, _ := cmd.Flags().GetInt("size"); v > 0 {
		filter.Size = v
	}
	out := a.cfg.GDC.OutputDir
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		out = v
	}

	client, cleanup := bootstrap.GDCClient(ctx, a.cfg, a.logger)
	defer cleanup()

	rc := &ingestion.RunContext{DataDir: out}
	if err := ingestion.NewDownloadStage(client, filter).Execute(ctx, rc); err != nil {
		return a.fail("download failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d files)\n", rc.MetadataFile, rc.FilesDownloaded)
	return nil
}

func (a *app) runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg.Loader
	if v, _ := cmd.Flags().GetInt("row-limit"); v >= 0 {
		cfg.RowLimit = v
	}
	if v, _ := cmd.Flags().GetBool("strict"); v {
		cfg.Strict = true
	}
	fromS3, _ := cmd.Flags().GetBool("from-s3")

	if fromS3 && a.cfg.S3.Bucket == "" {
		return fmt.Errorf("--from-s3 requires S3_BUCKET")
	}

	var manifest string
	cfg.DataDir, manifest = resolveManifest(cfg.DataDir, args[0])
	if !fromS3 {
		// The manifest must exist before anything touches the network.
		path := filepath.Join(cfg.DataDir, manifest)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return a.fail("ingestion failed", apierr.MissingFile(path, err))
			}
			return a.fail("ingestion failed", fmt.Errorf("stat metadata: %w", err))
		}
	}

	graphClient, err := bootstrap.Graph(ctx, a.cfg, a.logger)
	if err != nil {
		return a.fail("failed to connect to neo4j", err)
	}
	defer graphClient.Close(ctx)

	stages := []ingestion.Stage{ingestion.NewNoOpStage("sync")}
	if fromS3 {
		s3Conn, err := connectors.NewS3Connector(ctx, a.cfg.S3)
		if err != nil {
			return a.fail("s3 connector init failed", err)
		}
		stages[0] = ingestion.NewSyncStage(s3Conn, a.cfg.S3.Prefix, a.logger)
	}
	loader := ingestion.NewLoader(graphClient, cfg, ingestion.NewMetrics(prometheus.NewRegistry()), a.logger)
	stages = append(stages, ingestion.NewLoadStage(loader))

	rc := &ingestion.RunContext{DataDir: cfg.DataDir, MetadataFile: manifest}
	if err := ingestion.NewPipeline(stages, a.logger).Run(ctx, rc); err != nil {
		return a.fail("ingestion failed", err)
	}
	return printJSON(cmd, rc.Stats)
}

// resolveManifest splits the ingest argument into the data directory and the
// manifest name inside it. A bare file name lives in dataDir; a path with a
// directory part is taken as given, and the expression files it names are
// expected beside it.
func resolveManifest(dataDir, arg string) (dir, name string) {
	if filepath.Base(arg) == arg {
		return dataDir, arg
	}
	return filepath.Dir(arg), filepath.Base(arg)
}

func (a *app) runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	graphClient, err := bootstrap.Graph(ctx, a.cfg, a.logger)
	if err != nil {
		return a.fail("failed to connect to neo4j", err)
	}
	defer graphClient.Close(ctx)

	tr := bootstrap.Translator(ctx, a.cfg, graphClient, a.logger)
	question := joinArgs(args)

	if only, _ := cmd.Flags().GetBool("cypher-only"); only {
		cypher, err := tr.Translate(ctx, question)
		if err != nil {
			return a.fail("translation failed", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), cypher)
		return nil
	}

	ans, err := tr.Ask(ctx, question)
	if err != nil {
		return a.fail("ask failed", err)
	}
	return printJSON(cmd, ans)
}

func (a *app) runCase(cmd *cobra.Command, args []string) error {
	client, cleanup := bootstrap.GDCClient(cmd.Context(), a.cfg, a.logger)
	defer cleanup()
	doc, err := client.GetCase(cmd.Context(), args[0])
	if err != nil {
		return a.fail("case lookup failed", err)
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return a.fail("create output dir", err)
		}
		path := filepath.Join(out, args[0]+".json")
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return a.fail("write case document", err)
		}
		a.logger.Info("case document saved", slog.String("path", path))
	}
	return printJSON(cmd, doc)
}

func (a *app) runFile(cmd *cobra.Command, args []string) error {
	client, cleanup := bootstrap.GDCClient(cmd.Context(), a.cfg, a.logger)
	defer cleanup()
	doc, err := client.GetFile(cmd.Context(), args[0])
	if err != nil {
		return a.fail("file lookup failed", err)
	}
	return printJSON(cmd, doc)
}

func (a *app) runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	graphClient, err := bootstrap.Graph(ctx, a.cfg, a.logger)
	if err != nil {
		return a.fail("failed to connect to neo4j", err)
	}
	defer graphClient.Close(ctx)
	counts, err := graphClient.CountNodes(ctx)
	if err != nil {
		return a.fail("count failed", err)
	}
	return printJSON(cmd, counts)
}
