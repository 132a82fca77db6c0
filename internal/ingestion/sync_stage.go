package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/maraichr/gdcgraph/internal/ingestion/connectors"
)

// Syncer copies remote objects under a prefix into a local directory.
type Syncer interface {
	Sync(ctx context.Context, prefix, destDir string) (connectors.SyncResult, error)
}

// SyncStage stages previously archived GDC files from object storage into
// the data directory so they can be loaded without contacting the GDC.
type SyncStage struct {
	syncer Syncer
	prefix string
	logger *slog.Logger
}

func NewSyncStage(syncer Syncer, prefix string, logger *slog.Logger) *SyncStage {
	return &SyncStage{syncer: syncer, prefix: prefix, logger: logger}
}

func (s *SyncStage) Name() string { return "sync" }

func (s *SyncStage) Execute(ctx context.Context, rc *RunContext) error {
	if err := os.MkdirAll(rc.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	s.logger.Info("syncing data files", slog.String("prefix", s.prefix), slog.String("dest", rc.DataDir))
	res, err := s.syncer.Sync(ctx, s.prefix, rc.DataDir)
	if err != nil {
		return fmt.Errorf("sync %s: %w", s.prefix, err)
	}
	rc.FilesSynced = res.Fetched
	s.logger.Info("data files synced", slog.Int("fetched", res.Fetched), slog.Int("skipped", res.Skipped))
	return nil
}
