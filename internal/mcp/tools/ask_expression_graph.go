package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maraichr/gdcgraph/internal/mcp"
	"github.com/maraichr/gdcgraph/internal/text2cypher"
)

// AskExpressionGraphParams are the parameters for the ask_expression_graph tool.
type AskExpressionGraphParams struct {
	Question          string `json:"question"`
	MaxResponseTokens int    `json:"max_response_tokens,omitempty"`
}

// Asker answers a question over the expression graph.
type Asker interface {
	Ask(ctx context.Context, question string) (text2cypher.Answer, error)
}

// AskExpressionGraphHandler translates a question to Cypher, runs it and
// returns the answer, the query and the rows.
type AskExpressionGraphHandler struct {
	asker  Asker
	logger *slog.Logger
}

func NewAskExpressionGraphHandler(asker Asker, logger *slog.Logger) *AskExpressionGraphHandler {
	return &AskExpressionGraphHandler{asker: asker, logger: logger}
}

func (h *AskExpressionGraphHandler) Handle(ctx context.Context, params AskExpressionGraphParams) (string, error) {
	ans, err := h.asker.Ask(ctx, params.Question)
	if err != nil {
		h.logger.Warn("ask_expression_graph failed",
			slog.String("question", params.Question),
			slog.String("error", err.Error()))
		return "", err
	}

	rb := mcp.NewResponseBuilder(params.MaxResponseTokens)
	rb.AddHeader("**Answer:** " + ans.Answer)
	rb.AddCodeBlock("cypher", ans.Cypher)
	if len(ans.Rows) == 0 {
		rb.AddLine("*Query returned no rows.*")
		return rb.Finalize(0, 0), nil
	}
	rb.AddLine(fmt.Sprintf("**Rows** (%d)", len(ans.Rows)))
	rb.AddLine("")
	shown := rb.AddTable(ans.Rows)
	return rb.Finalize(len(ans.Rows), shown), nil
}
