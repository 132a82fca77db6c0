package ingestion

import (
	"context"
	"fmt"
	"os"

	"github.com/maraichr/gdcgraph/internal/gdc"
)

// Downloader fetches a filtered manifest and the data files it names.
type Downloader interface {
	BulkDownload(ctx context.Context, filter gdc.FileFilter, outDir string) (gdc.BulkResult, error)
}

// DownloadStage pulls one filtered batch from the GDC into the data directory.
type DownloadStage struct {
	client Downloader
	filter gdc.FileFilter
}

func NewDownloadStage(client Downloader, filter gdc.FileFilter) *DownloadStage {
	return &DownloadStage{client: client, filter: filter}
}

func (s *DownloadStage) Name() string { return "download" }

func (s *DownloadStage) Execute(ctx context.Context, rc *RunContext) error {
	if err := os.MkdirAll(rc.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	res, err := s.client.BulkDownload(ctx, s.filter, rc.DataDir)
	if err != nil {
		return err
	}
	rc.MetadataFile = res.Manifest
	rc.FilesDownloaded = len(res.Files)
	return nil
}
