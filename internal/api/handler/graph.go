package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// NodeCounter reports node counts per label.
type NodeCounter interface {
	CountNodes(ctx context.Context) (map[string]int64, error)
}

type GraphHandler struct {
	logger *slog.Logger
	graph  NodeCounter
}

func NewGraphHandler(logger *slog.Logger, graph NodeCounter) *GraphHandler {
	return &GraphHandler{logger: logger, graph: graph}
}

// Stats handles GET /api/v1/graph/stats
func (h *GraphHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.graph.CountNodes(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, apierr.QueryFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": counts})
}
