// Package text2cypher answers natural-language questions over the expression
// graph by having a language model write a read-only Cypher query.
package text2cypher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maraichr/gdcgraph/internal/llm"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// Querier runs a read-only statement and returns its rows.
type Querier interface {
	ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Question string           `json:"question"`
	Cypher   string           `json:"cypher"`
	Rows     []map[string]any `json:"rows"`
	Answer   string           `json:"answer"`
}

// Translator turns questions into validated Cypher, runs it and phrases the
// result.
type Translator struct {
	llm    llm.Completer
	graph  Querier
	logger *slog.Logger
}

// NewTranslator creates a translator. A nil completer makes every call fail
// with LLM_UNAVAILABLE.
func NewTranslator(completer llm.Completer, graph Querier, logger *slog.Logger) *Translator {
	return &Translator{llm: completer, graph: graph, logger: logger}
}

// Translate generates and validates the Cypher for a question without
// running it.
func (t *Translator) Translate(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apierr.QuestionRequired()
	}
	if t.llm == nil {
		return "", apierr.LLMUnavailable()
	}

	reply, err := t.llm.Complete(ctx, cypherMessages(question))
	if err != nil {
		return "", fmt.Errorf("generate cypher: %w", err)
	}
	cypher := extractCypher(reply)
	if err := Validate(cypher); err != nil {
		t.logger.Warn("rejected generated cypher",
			slog.String("question", question),
			slog.String("cypher", cypher),
			slog.String("error", err.Error()))
		return cypher, err
	}
	return cypher, nil
}

// Ask translates the question, runs the query and asks the model to answer
// from the returned rows.
func (t *Translator) Ask(ctx context.Context, question string) (Answer, error) {
	ans := Answer{Question: strings.TrimSpace(question)}

	cypher, err := t.Translate(ctx, question)
	ans.Cypher = cypher
	if err != nil {
		return ans, err
	}

	rows, err := t.graph.ReadQuery(ctx, cypher, nil)
	if err != nil {
		return ans, apierr.QueryFailed(err)
	}
	ans.Rows = rows

	t.logger.Info("cypher executed",
		slog.String("question", ans.Question),
		slog.String("cypher", cypher),
		slog.Int("rows", len(rows)),
		slog.String("model", t.llm.Model()))

	msgs, err := answerMessages(ans.Question, rows)
	if err != nil {
		return ans, err
	}
	text, err := t.llm.Complete(ctx, msgs)
	if err != nil {
		return ans, fmt.Errorf("phrase answer: %w", err)
	}
	ans.Answer = text
	return ans, nil
}
