package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maraichr/gdcgraph/internal/text2cypher"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAsker struct {
	ans text2cypher.Answer
	err error
}

func (s stubAsker) Ask(context.Context, string) (text2cypher.Answer, error) { return s.ans, s.err }

func TestAskExpressionGraph_Handle(t *testing.T) {
	h := NewAskExpressionGraphHandler(stubAsker{ans: text2cypher.Answer{
		Answer: "G1 is highest.",
		Cypher: "MATCH (g:Gene) RETURN g.id",
		Rows:   []map[string]any{{"g.id": "G1"}},
	}}, testLogger())

	out, err := h.Handle(context.Background(), AskExpressionGraphParams{Question: "q"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	for _, want := range []string{"G1 is highest.", "```cypher\nMATCH (g:Gene) RETURN g.id\n```", "| g.id |", "| G1 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAskExpressionGraph_NoRows(t *testing.T) {
	h := NewAskExpressionGraphHandler(stubAsker{ans: text2cypher.Answer{Answer: "I don't know.", Cypher: "MATCH (g:Gene) RETURN g"}}, testLogger())
	out, err := h.Handle(context.Background(), AskExpressionGraphParams{Question: "q"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(out, "no rows") {
		t.Errorf("output = %q", out)
	}
}

type stubCounter struct{ err error }

func (s stubCounter) CountNodes(context.Context) (map[string]int64, error) {
	return map[string]int64{"Sample": 2, "Gene": 7}, s.err
}

func TestDescribeGraphSchema_Handle(t *testing.T) {
	h := NewDescribeGraphSchemaHandler(stubCounter{}, testLogger())

	out, err := h.Handle(context.Background(), DescribeGraphSchemaParams{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(out, "(:Project)-[:HAS]->(:Sample)") || strings.Contains(out, "Node counts") {
		t.Errorf("schema output:\n%s", out)
	}

	out, err = h.Handle(context.Background(), DescribeGraphSchemaParams{IncludeCounts: true})
	if err != nil {
		t.Fatalf("Handle with counts: %v", err)
	}
	if strings.Index(out, "- Gene: 7") > strings.Index(out, "- Sample: 2") || !strings.Contains(out, "- Gene: 7") {
		t.Errorf("counts output:\n%s", out)
	}

	if _, err := NewDescribeGraphSchemaHandler(stubCounter{err: errors.New("down")}, testLogger()).
		Handle(context.Background(), DescribeGraphSchemaParams{IncludeCounts: true}); err == nil {
		t.Error("expected count error")
	}
}

func TestWrapHandler_MapsErrors(t *testing.T) {
	h := NewAskExpressionGraphHandler(stubAsker{err: apierr.InvalidQuery("unknown label Case")}, testLogger())
	res, _, err := WrapHandler[AskExpressionGraphParams](h)(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("wrapper returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected IsError result")
	}
	text := res.Content[0].(*sdkmcp.TextContent).Text
	if text != "INVALID_QUERY: Generated query rejected: unknown label Case" {
		t.Errorf("text = %q", text)
	}
}

func TestRegister(t *testing.T) {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "gdcgraph", Version: "test"}, nil)
	Register(server, stubAsker{}, nil, testLogger())
}
