package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maraichr/gdcgraph/internal/gdc"
	"github.com/maraichr/gdcgraph/internal/graph"
	"github.com/maraichr/gdcgraph/internal/ingestion/connectors"
	"github.com/maraichr/gdcgraph/pkg/models"
)

type recordingStage struct {
	name  string
	err   error
	order *[]string
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Execute(_ context.Context, _ *RunContext) error {
	*s.order = append(*s.order, s.name)
	return s.err
}

func TestPipeline_RunsInOrder(t *testing.T) {
	var order []string
	p := NewPipeline([]Stage{
		&recordingStage{name: "a", order: &order},
		NewNoOpStage("skip"),
		&recordingStage{name: "b", order: &order},
	}, testLogger())

	if err := p.Run(context.Background(), &RunContext{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(order, ",") != "a,b" {
		t.Errorf("order = %v", order)
	}
}

func TestPipeline_StopsOnError(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	p := NewPipeline([]Stage{
		&recordingStage{name: "a", order: &order, err: boom},
		&recordingStage{name: "b", order: &order},
	}, testLogger())

	err := p.Run(context.Background(), &RunContext{})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "stage a failed") {
		t.Fatalf("Run error = %v", err)
	}
	if len(order) != 1 {
		t.Errorf("stages run = %v", order)
	}
}

// fakeDownloader writes a manifest and one coding file into outDir.
type fakeDownloader struct {
	t      *testing.T
	filter gdc.FileFilter
}

func (d *fakeDownloader) BulkDownload(_ context.Context, f gdc.FileFilter, outDir string) (gdc.BulkResult, error) {
	d.filter = f
	writeFile(d.t, outDir, "manifest.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n")
	writeFile(d.t, outDir, codingFile, geneCounts(2))
	return gdc.BulkResult{Manifest: "manifest.tsv", Files: []string{codingFile}}, nil
}

func TestPipeline_DownloadThenLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store := graph.NewMemStore()
	dl := &fakeDownloader{t: t}
	filter := gdc.FileFilter{PrimarySite: "Blood", Strategies: []string{"RNA-Seq"}, DataFormat: "TSV", Size: 40}

	p := NewPipeline([]Stage{
		NewDownloadStage(dl, filter),
		NewLoadStage(newTestLoader(store, dir, 10, false, nil)),
	}, testLogger())

	rc := &RunContext{DataDir: dir}
	if err := p.Run(context.Background(), rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dl.filter.PrimarySite != "Blood" || dl.filter.Size != 40 {
		t.Errorf("filter = %+v", dl.filter)
	}
	if rc.MetadataFile != "manifest.tsv" || rc.FilesDownloaded != 1 {
		t.Errorf("run context = %+v", rc)
	}
	if rc.Stats.Expressions != 2 || store.NodeCount(models.LabelGene) != 2 {
		t.Errorf("stats = %+v", rc.Stats)
	}
}

func TestLoadStage_RequiresMetadataFile(t *testing.T) {
	s := NewLoadStage(newTestLoader(graph.NewMemStore(), t.TempDir(), 10, false, nil))
	if err := s.Execute(context.Background(), &RunContext{}); err == nil {
		t.Fatal("expected error without metadata file")
	}
}

type fakeSyncer struct {
	prefix, dest string
	err          error
}

func (s *fakeSyncer) Sync(_ context.Context, prefix, destDir string) (connectors.SyncResult, error) {
	s.prefix, s.dest = prefix, destDir
	if s.err != nil {
		return connectors.SyncResult{}, s.err
	}
	return connectors.SyncResult{Fetched: 2, Skipped: 1}, nil
}

func TestSyncStage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	syncer := &fakeSyncer{}
	rc := &RunContext{DataDir: dir}
	if err := NewSyncStage(syncer, "gdc/", testLogger()).Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if syncer.prefix != "gdc/" || syncer.dest != dir {
		t.Errorf("synced %q into %q", syncer.prefix, syncer.dest)
	}
	if rc.FilesSynced != 2 {
		t.Errorf("FilesSynced = %d, want 2", rc.FilesSynced)
	}

	syncer.err = errors.New("denied")
	err := NewSyncStage(syncer, "gdc/", testLogger()).Execute(context.Background(), &RunContext{DataDir: dir})
	if err == nil || !strings.Contains(err.Error(), "sync gdc/") {
		t.Errorf("Execute error = %v", err)
	}
}
