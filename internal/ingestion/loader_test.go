package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/graph"
	"github.com/maraichr/gdcgraph/pkg/apierr"
	"github.com/maraichr/gdcgraph/pkg/models"
)

const (
	metadataHeader = "file_name\texperimental_strategy\tcases.0.case_id\tcases.0.disease_type\tcases.0.samples.0.sample_type\tcases.0.project.project_id\tid\n"
	codingFile     = "F1.rna_seq.augmented_star_gene_counts.tsv"
	mirnaFile      = "F2.mirbase21.mirnaseq.mirnas.quantification.txt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// geneCounts renders a STAR table with the six preamble lines and n genes.
func geneCounts(n int) string {
	var b strings.Builder
	b.WriteString("# gene-model: GENCODE v36\n")
	b.WriteString("gene_id\tgene_name\tgene_type\tunstranded\tstranded_first\tstranded_second\tfpkm_unstranded\n")
	for _, s := range []string{"N_unmapped", "N_multimapping", "N_noFeature", "N_ambiguous"} {
		b.WriteString(s + "\t\t\t7\t7\t7\t\n")
	}
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "G%d\tGENE%d\tprotein_coding\t%d\t0\t0\t%d.5\n", i, i, i*10, i)
	}
	return b.String()
}

// newTestLoader returns a loader with sequential expression uids.
func newTestLoader(store graph.Store, dir string, limit int, strict bool, m *Metrics) *Loader {
	l := NewLoader(store, config.LoaderConfig{DataDir: dir, RowLimit: limit, Strict: strict}, m, testLogger())
	n := 0
	l.newUID = func() string {
		n++
		return fmt.Sprintf("E%d", n)
	}
	return l
}

func TestLoad_CodingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tPrimary Tumor\tP1\tM1\n")
	writeFile(t, dir, codingFile, geneCounts(1))

	store := graph.NewMemStore()
	stats, err := newTestLoader(store, dir, 10, false, nil).Load(context.Background(), "meta.tsv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats != (Stats{MetadataRows: 1, CodingFiles: 1, Expressions: 1}) {
		t.Errorf("stats = %+v", stats)
	}

	for _, l := range models.Labels {
		if got := store.NodeCount(l); got != 1 {
			t.Errorf("%s nodes = %d, want 1", l, got)
		}
		if !store.HasIndex(l, models.KeyFor(l)) {
			t.Errorf("no unique index on %s.%s", l, models.KeyFor(l))
		}
	}

	sample, _ := store.Node(models.LabelSample, "S1")
	if sample["sample_type"] != "Primary Tumor" {
		t.Errorf("sample = %v", sample)
	}
	meas, _ := store.Node(models.LabelMeasurement, "M1")
	if meas["type"] != "RNA-Seq" {
		t.Errorf("measurement = %v", meas)
	}
	expr, ok := store.Node(models.LabelExpression, "E1")
	if !ok || expr["raw"] != int64(10) || expr["norm"] != 1.5 || expr["norm_type"] != "fpkm" {
		t.Errorf("expression = %v", expr)
	}
	gene, _ := store.Node(models.LabelGene, "G1")
	if gene["name"] != "GENE1" || gene["type"] != "protein_coding" {
		t.Errorf("gene = %v", gene)
	}

	wantRels := []struct {
		t        models.RelType
		from, to string
	}{
		{models.RelFrom, "P1", "D1"},
		{models.RelHas, "P1", "S1"},
		{models.RelMeasuredTo, "S1", "M1"},
		{models.RelResultedTo, "M1", "E1"},
		{models.RelBelongsTo, "E1", "G1"},
	}
	for _, r := range wantRels {
		if !store.HasRel(r.t, r.from, r.to) {
			t.Errorf("missing (%s)-[:%s]->(%s)", r.from, r.t, r.to)
		}
	}
}

func TestLoad_MiRNAFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+mirnaFile+"\tmiRNA-Seq\tS1\tD1\tBlood Derived Normal\tP1\tM2\n")
	writeFile(t, dir, mirnaFile, "miRNA_ID\tread_count\treads_per_million_miRNA_mapped\tcross-mapped\nhsa-mir-1\t500\t3.2\tN\n")

	store := graph.NewMemStore()
	stats, err := newTestLoader(store, dir, 10, false, nil).Load(context.Background(), "meta.tsv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.MiRNAFiles != 1 || stats.Expressions != 1 {
		t.Errorf("stats = %+v", stats)
	}

	gene, ok := store.Node(models.LabelGene, "hsa-mir-1")
	if !ok || gene["name"] != "-" || gene["type"] != "miRNA" {
		t.Errorf("gene = %v", gene)
	}
	expr, _ := store.Node(models.LabelExpression, "E1")
	if expr["raw"] != int64(500) || expr["norm"] != 3.2 || expr["norm_type"] != "rpm" {
		t.Errorf("expression = %v", expr)
	}
	if !store.HasRel(models.RelResultedTo, "M2", "E1") || !store.HasRel(models.RelBelongsTo, "E1", "hsa-mir-1") {
		t.Error("expression not linked")
	}
}

func TestLoad_RowLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n")
	writeFile(t, dir, codingFile, geneCounts(25))

	tests := []struct {
		limit int
		want  int
	}{
		{10, 10},
		{0, 25},
		{3, 3},
	}
	for _, tt := range tests {
		store := graph.NewMemStore()
		stats, err := newTestLoader(store, dir, tt.limit, false, nil).Load(context.Background(), "meta.tsv")
		if err != nil {
			t.Fatalf("limit %d: %v", tt.limit, err)
		}
		if stats.Expressions != tt.want || store.NodeCount(models.LabelExpression) != tt.want {
			t.Errorf("limit %d: expressions = %d, want %d", tt.limit, stats.Expressions, tt.want)
		}
	}
}

func TestLoad_Reingest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n")
	writeFile(t, dir, codingFile, geneCounts(2))

	store := graph.NewMemStore()
	loader := newTestLoader(store, dir, 10, false, nil)
	for i := 0; i < 2; i++ {
		if _, err := loader.Load(context.Background(), "meta.tsv"); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}

	for _, l := range []models.Label{models.LabelProject, models.LabelDisease, models.LabelSample, models.LabelMeasurement} {
		if got := store.NodeCount(l); got != 1 {
			t.Errorf("%s nodes = %d, want 1", l, got)
		}
	}
	if got := store.NodeCount(models.LabelGene); got != 2 {
		t.Errorf("genes = %d, want 2", got)
	}
	// Expressions carry a fresh uid per load, so each row appears twice.
	if got := store.NodeCount(models.LabelExpression); got != 4 {
		t.Errorf("expressions = %d, want 4", got)
	}
	if got := len(store.Rels(models.RelBelongsTo)); got != 4 {
		t.Errorf("BELONGS_TO = %d, want 4", got)
	}
	if got := len(store.Rels(models.RelHas)); got != 1 {
		t.Errorf("HAS = %d, want 1", got)
	}
}

func TestLoad_MissingMetadata(t *testing.T) {
	store := graph.NewMemStore()
	_, err := newTestLoader(store, t.TempDir(), 10, false, nil).Load(context.Background(), "absent.tsv")
	if !apierr.IsMissingFile(err) {
		t.Fatalf("expected MISSING_FILE, got %v", err)
	}
	if store.Writes() != 0 {
		t.Errorf("writes = %d, want 0", store.Writes())
	}
}

func TestLoad_MissingDataFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n")

	store := graph.NewMemStore()
	_, err := newTestLoader(store, dir, 10, false, nil).Load(context.Background(), "meta.tsv")
	if !apierr.IsMissingFile(err) {
		t.Fatalf("expected MISSING_FILE, got %v", err)
	}
	if !strings.Contains(err.Error(), codingFile) {
		t.Errorf("error lacks file name: %v", err)
	}
	// Row-level nodes were written before the data file was opened.
	if store.NodeCount(models.LabelMeasurement) != 1 {
		t.Error("measurement not written")
	}
}

func TestLoad_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n")
	writeFile(t, dir, codingFile, geneCounts(0)+"G1\tA\tprotein_coding\tmany\t0\t0\t1.0\n")

	_, err := newTestLoader(graph.NewMemStore(), dir, 10, false, nil).Load(context.Background(), "meta.tsv")
	if !apierr.IsParse(err) {
		t.Fatalf("expected PARSE, got %v", err)
	}
}

func TestLoad_StoreFailureStops(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+
		codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n"+
		"F3.rna_seq.augmented_star_gene_counts.tsv\tRNA-Seq\tS2\tD1\tTumor\tP1\tM3\n")
	writeFile(t, dir, codingFile, geneCounts(3))
	writeFile(t, dir, "F3.rna_seq.augmented_star_gene_counts.tsv", geneCounts(3))

	store := graph.NewMemStore()
	boom := errors.New("connection reset")
	store.Fail = func(op string) error {
		if op == "node:"+string(models.LabelGene) {
			return boom
		}
		return nil
	}

	stats, err := newTestLoader(store, dir, 10, false, nil).Load(context.Background(), "meta.tsv")
	if !apierr.IsStoreWrite(err) || !errors.Is(err, boom) {
		t.Fatalf("expected STORE_WRITE wrapping cause, got %v", err)
	}
	if stats.Expressions != 0 {
		t.Errorf("expressions = %d, want 0", stats.Expressions)
	}
	// The first Expression was written before the Gene write failed; the
	// second manifest row was never reached.
	if store.NodeCount(models.LabelExpression) != 1 || store.NodeCount(models.LabelSample) != 1 {
		t.Errorf("expressions = %d, samples = %d", store.NodeCount(models.LabelExpression), store.NodeCount(models.LabelSample))
	}
}

// endpointDroppingStore loses relationship endpoints so MATCH finds nothing.
type endpointDroppingStore struct {
	*graph.MemStore
}

func (s endpointDroppingStore) MergeRelationship(ctx context.Context, rel models.Relationship, from, to any, props map[string]any) (int64, error) {
	return 0, nil
}

func TestLoad_StrictMode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n")
	writeFile(t, dir, codingFile, geneCounts(1))

	store := endpointDroppingStore{graph.NewMemStore()}
	if _, err := newTestLoader(store, dir, 10, false, nil).Load(context.Background(), "meta.tsv"); err != nil {
		t.Fatalf("lenient load: %v", err)
	}

	_, err := newTestLoader(store, dir, 10, true, nil).Load(context.Background(), "meta.tsv")
	if !errors.Is(err, graph.ErrEndpointMissing) || !apierr.IsStoreWrite(err) {
		t.Fatalf("strict load: expected endpoint error, got %v", err)
	}
}

func TestLoad_Metrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.tsv", metadataHeader+
		codingFile+"\tRNA-Seq\tS1\tD1\tTumor\tP1\tM1\n"+
		mirnaFile+"\tmiRNA-Seq\tS1\tD1\tTumor\tP1\tM2\n")
	writeFile(t, dir, codingFile, geneCounts(2))
	writeFile(t, dir, mirnaFile, "miRNA_ID\tread_count\treads_per_million_miRNA_mapped\nhsa-mir-1\t5\t1.0\n")

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	if _, err := newTestLoader(graph.NewMemStore(), dir, 10, false, m).Load(context.Background(), "meta.tsv"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"gene counts files", testutil.ToFloat64(m.files.WithLabelValues("gene_counts")), 1},
		{"mirna files", testutil.ToFloat64(m.files.WithLabelValues("mirna")), 1},
		{"gene count rows", testutil.ToFloat64(m.expressions.WithLabelValues("gene_counts")), 2},
		{"mirna rows", testutil.ToFloat64(m.expressions.WithLabelValues("mirna")), 1},
		{"gene nodes", testutil.ToFloat64(m.nodes.WithLabelValues("Gene")), 3},
		{"project nodes", testutil.ToFloat64(m.nodes.WithLabelValues("Project")), 2},
		{"HAS", testutil.ToFloat64(m.rels.WithLabelValues("HAS")), 2},
		{"BELONGS_TO", testutil.ToFloat64(m.rels.WithLabelValues("BELONGS_TO")), 3},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}
