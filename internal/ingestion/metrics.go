package ingestion

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maraichr/gdcgraph/internal/tsv"
	"github.com/maraichr/gdcgraph/pkg/models"
)

// Metrics counts ingestion writes. A nil *Metrics records nothing.
type Metrics struct {
	nodes       *prometheus.CounterVec
	rels        *prometheus.CounterVec
	files       *prometheus.CounterVec
	expressions *prometheus.CounterVec
}

// NewMetrics registers the ingestion counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gdcgraph",
			Name:      "nodes_upserted_total",
			Help:      "Nodes merged into the graph, by label.",
		}, []string{"label"}),
		rels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gdcgraph",
			Name:      "relationships_upserted_total",
			Help:      "Relationships merged into the graph, by type.",
		}, []string{"type"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gdcgraph",
			Name:      "files_loaded_total",
			Help:      "Expression files fully loaded, by format.",
		}, []string{"format"}),
		expressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gdcgraph",
			Name:      "expression_rows_total",
			Help:      "Expression rows loaded, by format.",
		}, []string{"format"}),
	}
	reg.MustRegister(m.nodes, m.rels, m.files, m.expressions)
	return m
}

func (m *Metrics) nodeUpserted(l models.Label) {
	if m != nil {
		m.nodes.WithLabelValues(string(l)).Inc()
	}
}

func (m *Metrics) relationshipUpserted(t models.RelType) {
	if m != nil {
		m.rels.WithLabelValues(string(t)).Inc()
	}
}

func (m *Metrics) fileLoaded(f tsv.Format) {
	if m != nil {
		m.files.WithLabelValues(f.String()).Inc()
	}
}

func (m *Metrics) expressionLoaded(f tsv.Format) {
	if m != nil {
		m.expressions.WithLabelValues(f.String()).Inc()
	}
}
