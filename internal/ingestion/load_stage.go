package ingestion

import (
	"context"
	"errors"
)

// LoadStage ingests rc.MetadataFile into the graph.
type LoadStage struct {
	loader *Loader
}

func NewLoadStage(l *Loader) *LoadStage {
	return &LoadStage{loader: l}
}

func (s *LoadStage) Name() string { return "load" }

func (s *LoadStage) Execute(ctx context.Context, rc *RunContext) error {
	if rc.MetadataFile == "" {
		return errors.New("no metadata file to load")
	}
	stats, err := s.loader.Load(ctx, rc.MetadataFile)
	rc.Stats = stats
	return err
}
