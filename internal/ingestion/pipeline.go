package ingestion

import (
	"context"
	"fmt"
	"log/slog"
)

// Pipeline runs its stages in order against one RunContext. A failing stage
// stops the run; nothing already written is undone.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

func NewPipeline(stages []Stage, logger *slog.Logger) *Pipeline {
	return &Pipeline{stages: stages, logger: logger}
}

// Run executes every stage.
func (p *Pipeline) Run(ctx context.Context, rc *RunContext) error {
	p.logger.Info("pipeline started",
		slog.String("data_dir", rc.DataDir),
		slog.Int("stages", len(p.stages)))

	for _, stage := range p.stages {
		p.logger.Info("stage started", slog.String("stage", stage.Name()))

		if err := stage.Execute(ctx, rc); err != nil {
			return fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}

		p.logger.Info("stage completed", slog.String("stage", stage.Name()))
	}

	p.logger.Info("pipeline completed",
		slog.String("metadata_file", rc.MetadataFile),
		slog.Int("files_downloaded", rc.FilesDownloaded),
		slog.Int("metadata_rows", rc.Stats.MetadataRows),
		slog.Int("expressions", rc.Stats.Expressions))
	return nil
}

// NoOpStage is a placeholder for a disabled optional stage.
type NoOpStage struct {
	name string
}

func NewNoOpStage(name string) *NoOpStage {
	return &NoOpStage{name: name}
}

func (s *NoOpStage) Name() string { return s.name }

func (s *NoOpStage) Execute(_ context.Context, _ *RunContext) error {
	return nil
}
