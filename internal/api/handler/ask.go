package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maraichr/gdcgraph/internal/text2cypher"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// Asker answers questions over the expression graph.
type Asker interface {
	Ask(ctx context.Context, question string) (text2cypher.Answer, error)
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskHandler serves natural-language graph questions.
type AskHandler struct {
	logger *slog.Logger
	asker  Asker
}

func NewAskHandler(logger *slog.Logger, asker Asker) *AskHandler {
	return &AskHandler{logger: logger, asker: asker}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if e := validateQuestion(req.Question); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if h.asker == nil {
		writeAPIError(w, h.logger, apierr.LLMUnavailable())
		return
	}

	ans, err := h.asker.Ask(r.Context(), req.Question)
	if err != nil {
		h.logger.Warn("ask failed",
			slog.String("question", req.Question),
			slog.String("cypher", ans.Cypher),
			slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

// Schema handles GET /api/v1/schema
func (h *AskHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"schema": text2cypher.Schema()})
}
