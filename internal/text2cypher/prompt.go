package text2cypher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maraichr/gdcgraph/internal/llm"
	"github.com/maraichr/gdcgraph/pkg/models"
)

const cypherInstructions = `Instructions:
Use only the provided relationship types and properties.
Do not use any other relationship types or properties that are not provided.
Use only the correct direction of graph.
Connect only nodes which are connected in provided data.
Assign different node variables if used multiple time in a query.
The query must only read from the graph.
Reply with ONLY the Cypher statement. No explanation, no markdown.`

const answerSystemPrompt = `You are an assistant that forms clear, human understandable answers.
The information part contains the provided rows, which are authoritative. Never doubt them or
try to correct them with internal knowledge. Make the answer sound like a response to the question.
If the provided information is empty, say that you don't know the answer.`

// maxContextRows bounds the rows handed to the answer step.
const maxContextRows = 10

// Schema renders the graph schema as node properties and relationship
// patterns.
func Schema() string {
	var b strings.Builder
	b.WriteString("Node properties:\n")
	for _, l := range models.Labels {
		fmt.Fprintf(&b, "%s {%s}\n", l, strings.Join(models.NodeProperties[l], ", "))
	}
	b.WriteString("The relationships:\n")
	for _, r := range models.Relationships {
		fmt.Fprintf(&b, "(:%s)-[:%s]->(:%s)\n", r.From, r.Type, r.To)
	}
	return b.String()
}

func cypherMessages(question string) []llm.Message {
	system := "Task: Generate a Cypher statement to query a graph database.\n\nSchema:\n" +
		Schema() + "\n" + cypherInstructions
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: question},
	}
}

func answerMessages(question string, rows []map[string]any) ([]llm.Message, error) {
	if len(rows) > maxContextRows {
		rows = rows[:maxContextRows]
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	info, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: answerSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Information:\n%s\n\nQuestion: %s", info, question)},
	}, nil
}
