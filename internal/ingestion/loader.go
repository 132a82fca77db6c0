package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/graph"
	"github.com/maraichr/gdcgraph/internal/tsv"
	"github.com/maraichr/gdcgraph/pkg/apierr"
	"github.com/maraichr/gdcgraph/pkg/models"
)

// State is a step of the load state machine.
type State string

const (
	StateReadMetadata   State = "read_metadata"
	StatePerRowDispatch State = "per_row_dispatch"
	StateLoadCoding     State = "load_coding"
	StateLoadMiRNA      State = "load_mirna"
	StateDone           State = "done"
)

// Stats summarises one Load call.
type Stats struct {
	MetadataRows int `json:"metadata_rows"`
	CodingFiles  int `json:"coding_files"`
	MiRNAFiles   int `json:"mirna_files"`
	Expressions  int `json:"expressions"`
}

// Loader turns a GDC metadata manifest and the files it names into graph
// nodes and relationships. Rows and writes are processed strictly in order;
// the first error stops the load and leaves earlier writes in place.
type Loader struct {
	upserter *graph.Upserter
	cfg      config.LoaderConfig
	metrics  *Metrics
	logger   *slog.Logger
	newUID   func() string
}

func NewLoader(store graph.Store, cfg config.LoaderConfig, metrics *Metrics, logger *slog.Logger) *Loader {
	return &Loader{
		upserter: graph.NewUpserter(store, cfg.Strict),
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		newUID:   func() string { return uuid.New().String() },
	}
}

// Load ingests the manifest named metadataFile inside the data directory.
func (l *Loader) Load(ctx context.Context, metadataFile string) (Stats, error) {
	var stats Stats

	path := filepath.Join(l.cfg.DataDir, metadataFile)
	l.logger.Info("loading GDC metadata",
		slog.String("state", string(StateReadMetadata)),
		slog.String("file", path))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, apierr.MissingFile(path, err)
		}
		return stats, fmt.Errorf("stat metadata: %w", err)
	}
	rows, err := tsv.ReadMetadata(path)
	if err != nil {
		return stats, fmt.Errorf("read metadata: %w", err)
	}
	stats.MetadataRows = len(rows)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := l.dispatch(ctx, row, &stats); err != nil {
			return stats, fmt.Errorf("%s (%s): %w", row.FileName, row.ID, err)
		}
	}

	l.logger.Info("GDC metadata loaded",
		slog.String("state", string(StateDone)),
		slog.Int("rows", stats.MetadataRows),
		slog.Int("coding_files", stats.CodingFiles),
		slog.Int("mirna_files", stats.MiRNAFiles),
		slog.Int("expressions", stats.Expressions))
	return stats, nil
}

// dispatch writes the project, disease, sample and measurement of one
// manifest row, then loads its expression file.
func (l *Loader) dispatch(ctx context.Context, row tsv.MetadataRow, stats *Stats) error {
	l.logger.Debug("metadata row",
		slog.String("state", string(StatePerRowDispatch)),
		slog.String("file_name", row.FileName))

	nodes := []struct {
		label  models.Label
		key    string
		record map[string]any
	}{
		{models.LabelProject, models.KeyProject, models.Project{ID: row.ProjectID}.Props()},
		{models.LabelDisease, models.KeyDisease, models.Disease{Name: row.DiseaseType}.Props()},
		{models.LabelSample, models.KeySample, models.Sample{ID: row.CaseID, SampleType: row.SampleType}.Props()},
		{models.LabelMeasurement, models.KeyMeasurement, models.Measurement{ID: row.ID, Type: row.ExperimentalStrategy}.Props()},
	}
	for _, n := range nodes {
		if err := l.node(ctx, n.label, n.key, n.record); err != nil {
			return err
		}
	}

	rels := []struct {
		rel      models.Relationship
		from, to string
	}{
		{models.ProjectFromDisease, row.ProjectID, row.DiseaseType},
		{models.ProjectHasSample, row.ProjectID, row.CaseID},
		{models.SampleMeasuredTo, row.CaseID, row.ID},
	}
	for _, r := range rels {
		if err := l.relationship(ctx, r.rel, r.from, r.to); err != nil {
			return err
		}
	}

	file := filepath.Join(l.cfg.DataDir, row.FileName)
	switch row.Format() {
	case tsv.FormatGeneCounts:
		if err := l.loadCoding(ctx, file, row.ID, stats); err != nil {
			return err
		}
		stats.CodingFiles++
	case tsv.FormatMiRNA:
		if err := l.loadMiRNA(ctx, file, row.ID, stats); err != nil {
			return err
		}
		stats.MiRNAFiles++
	default:
		// ReadMetadata only returns recognized formats.
		return fmt.Errorf("unrecognized expression file %s", row.FileName)
	}
	l.metrics.fileLoaded(row.Format())
	return nil
}

func (l *Loader) loadCoding(ctx context.Context, file, measurementID string, stats *Stats) error {
	l.logger.Info("loading mRNA expression data",
		slog.String("state", string(StateLoadCoding)),
		slog.String("file", file))
	rows, err := tsv.ReadGeneCounts(file, l.cfg.RowLimit)
	if err != nil {
		return err
	}
	for _, r := range rows {
		expr := models.Expression{UID: l.newUID(), Raw: r.Raw, Norm: r.FPKM, NormType: models.NormFPKM}
		gene := models.Gene{ID: r.GeneID, Name: r.GeneName, Type: r.GeneType}
		if err := l.expression(ctx, measurementID, expr, gene); err != nil {
			return err
		}
		stats.Expressions++
		l.metrics.expressionLoaded(tsv.FormatGeneCounts)
	}
	return nil
}

func (l *Loader) loadMiRNA(ctx context.Context, file, measurementID string, stats *Stats) error {
	l.logger.Info("loading miRNA expression data",
		slog.String("state", string(StateLoadMiRNA)),
		slog.String("file", file))
	rows, err := tsv.ReadMiRNA(file, l.cfg.RowLimit)
	if err != nil {
		return err
	}
	for _, r := range rows {
		expr := models.Expression{UID: l.newUID(), Raw: r.Raw, Norm: r.RPM, NormType: models.NormRPM}
		gene := models.Gene{ID: r.MiRNAID, Name: models.UnknownGeneName, Type: models.GeneTypeMiRNA}
		if err := l.expression(ctx, measurementID, expr, gene); err != nil {
			return err
		}
		stats.Expressions++
		l.metrics.expressionLoaded(tsv.FormatMiRNA)
	}
	return nil
}

// expression writes one Expression, its Gene and the links
// Measurement -> Expression -> Gene.
func (l *Loader) expression(ctx context.Context, measurementID string, expr models.Expression, gene models.Gene) error {
	if err := l.node(ctx, models.LabelExpression, models.KeyExpression, expr.Props()); err != nil {
		return err
	}
	if err := l.node(ctx, models.LabelGene, models.KeyGene, gene.Props()); err != nil {
		return err
	}
	if err := l.relationship(ctx, models.MeasurementResult, measurementID, expr.UID); err != nil {
		return err
	}
	return l.relationship(ctx, models.ExpressionOfGene, expr.UID, gene.ID)
}

func (l *Loader) node(ctx context.Context, label models.Label, key string, record map[string]any) error {
	if err := l.upserter.UpsertNode(ctx, label, key, record); err != nil {
		return err
	}
	l.metrics.nodeUpserted(label)
	return nil
}

func (l *Loader) relationship(ctx context.Context, rel models.Relationship, from, to string) error {
	if err := l.upserter.UpsertRelationship(ctx, rel, from, to, nil); err != nil {
		return err
	}
	l.metrics.relationshipUpserted(rel.Type)
	return nil
}
