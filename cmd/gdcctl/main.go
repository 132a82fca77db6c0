package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maraichr/gdcgraph/internal/bootstrap"
	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gdcctl",
		Short: "Download, ingest and query GDC expression data",
		Long: `gdcctl works with GDC gene expression data held in a Neo4j graph.

It downloads filtered file batches from the GDC API, loads the metadata
manifest and expression tables into the graph, and answers natural
language questions by generating read-only Cypher.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			// Logs go to stderr so command output stays pipeable.
			a.logger = bootstrap.NewLogger(os.Stderr, cfg.Log.Level)
			return nil
		},
	}

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download a filtered batch of GDC files and its manifest",
		RunE:  a.runDownload,
	}
	downloadCmd.Flags().String("primary-site", "", "Primary site filter (default GDC_PRIMARY_SITE)")
	downloadCmd.Flags().StringSlice("strategy", nil, "Experimental strategies (default GDC_EXPERIMENTAL_STRATEGIES)")
	downloadCmd.Flags().Int("size", 0, "Number of files to request (default GDC_BATCH_SIZE)")
	downloadCmd.Flags().String("out", "", "Output directory (default OUTPUT_DIRECTORY)")
	rootCmd.AddCommand(downloadCmd)

	ingestCmd := &cobra.Command{
		Use:   "ingest [metadata.tsv]",
		Short: "Load a metadata manifest and the files it names into Neo4j",
		Long: `Load a metadata manifest and the expression files it names into Neo4j.

A bare file name, as printed by download, is read from OUTPUT_DIRECTORY.
A path with a directory part is used as given, and the expression files
are read from the manifest's directory.`,
		Args:  cobra.ExactArgs(1),
		RunE:  a.runIngest,
	}
	ingestCmd.Flags().Int("row-limit", -1, "Expression rows per file, 0 for all (default INGEST_ROW_LIMIT)")
	ingestCmd.Flags().Bool("strict", false, "Fail when a relationship endpoint is missing")
	ingestCmd.Flags().Bool("from-s3", false, "Sync archived files from S3_BUCKET into the data directory first")
	rootCmd.AddCommand(ingestCmd)

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a natural language question over the graph",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runAsk,
	}
	askCmd.Flags().Bool("cypher-only", false, "Print the generated Cypher without running it")
	rootCmd.AddCommand(askCmd)

	caseCmd := &cobra.Command{
		Use:   "case [case-id]",
		Short: "Print the GDC document for a case",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runCase,
	}
	caseCmd.Flags().String("out", "", "Also write the document to <out>/<case-id>.json")
	rootCmd.AddCommand(caseCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "file [file-id]",
		Short: "Print the GDC document for a file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runFile,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print node counts per label",
		RunE:  a.runStats,
	})

	return rootCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (a *app) fail(msg string, err error) error {
	a.logger.Error(msg, apierr.Attr(err))
	return fmt.Errorf("%s: %w", msg, err)
}
