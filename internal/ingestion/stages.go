package ingestion

import "context"

// Stage represents a step in the ingestion pipeline.
type Stage interface {
	Name() string
	Execute(ctx context.Context, rc *RunContext) error
}

// RunContext carries state through the pipeline stages.
type RunContext struct {
	// DataDir holds the manifest and the expression files it names.
	DataDir string

	// Set by the download stage, or by the caller when ingesting an
	// existing manifest.
	MetadataFile string

	// Set by the sync stage
	FilesSynced int

	// Set by the download stage
	FilesDownloaded int

	// Set by the load stage
	Stats Stats
}
