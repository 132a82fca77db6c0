package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/maraichr/gdcgraph/internal/mcp"
	"github.com/maraichr/gdcgraph/internal/text2cypher"
)

// DescribeGraphSchemaParams are the parameters for the describe_graph_schema tool.
type DescribeGraphSchemaParams struct {
	IncludeCounts bool `json:"include_counts,omitempty"`
}

// NodeCounter reports node counts per label.
type NodeCounter interface {
	CountNodes(ctx context.Context) (map[string]int64, error)
}

// DescribeGraphSchemaHandler describes labels, properties and relationship
// patterns, optionally with live node counts.
type DescribeGraphSchemaHandler struct {
	graph  NodeCounter
	logger *slog.Logger
}

func NewDescribeGraphSchemaHandler(graph NodeCounter, logger *slog.Logger) *DescribeGraphSchemaHandler {
	return &DescribeGraphSchemaHandler{graph: graph, logger: logger}
}

func (h *DescribeGraphSchemaHandler) Handle(ctx context.Context, params DescribeGraphSchemaParams) (string, error) {
	rb := mcp.NewResponseBuilder(0)
	rb.AddHeader("**Expression graph schema**")
	rb.AddCodeBlock("", text2cypher.Schema())

	if !params.IncludeCounts {
		return rb.Finalize(0, 0), nil
	}
	if h.graph == nil {
		return "", fmt.Errorf("graph store not configured")
	}
	counts, err := h.graph.CountNodes(ctx)
	if err != nil {
		return "", fmt.Errorf("count nodes: %w", err)
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	rb.AddLine("**Node counts**")
	for _, l := range labels {
		rb.AddLine(fmt.Sprintf("- %s: %d", l, counts[l]))
	}
	return rb.Finalize(0, 0), nil
}
