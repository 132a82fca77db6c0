// Package mcp renders graph query results for Model Context Protocol tools.
package mcp

import (
	"fmt"
	"sort"
	"strings"
)

const defaultMaxTokens = 4000

// ResponseBuilder constructs token-budgeted Markdown responses for MCP tools.
// Token cost is estimated at four bytes per token.
type ResponseBuilder struct {
	buf           strings.Builder
	tokenEstimate int
	maxTokens     int
	truncated     bool
}

// NewResponseBuilder creates a builder with the given token budget.
// If maxTokens <= 0, defaultMaxTokens is used.
func NewResponseBuilder(maxTokens int) *ResponseBuilder {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ResponseBuilder{maxTokens: maxTokens}
}

// AddHeader writes a header line to the response. Headers are never dropped.
func (rb *ResponseBuilder) AddHeader(text string) {
	line := text + "\n\n"
	rb.buf.WriteString(line)
	rb.tokenEstimate += len(line) / 4
}

// AddLine writes a single line to the response, returning false if budget exceeded.
func (rb *ResponseBuilder) AddLine(text string) bool {
	return rb.write(text + "\n")
}

// AddSection writes a section with a heading.
func (rb *ResponseBuilder) AddSection(heading string, content string) bool {
	return rb.write(fmt.Sprintf("### %s\n%s\n\n", heading, content))
}

// AddCodeBlock writes a fenced block tagged with lang.
func (rb *ResponseBuilder) AddCodeBlock(lang, code string) bool {
	return rb.write(fmt.Sprintf("```%s\n%s\n```\n\n", lang, strings.TrimSpace(code)))
}

// AddTable renders rows as a Markdown table with columns in sorted order.
// It returns how many rows fit in the budget.
func (rb *ResponseBuilder) AddTable(rows []map[string]any) int {
	if len(rows) == 0 {
		return 0
	}
	cols := columns(rows)
	head := "| " + strings.Join(cols, " | ") + " |\n"
	sep := "|" + strings.Repeat(" --- |", len(cols)) + "\n"
	if !rb.write(head + sep) {
		return 0
	}
	for i, row := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = cell(row[c])
		}
		if !rb.write("| " + strings.Join(cells, " | ") + " |\n") {
			return i
		}
	}
	rb.buf.WriteString("\n")
	return len(rows)
}

// Finalize appends truncation notice and returns the final response text.
func (rb *ResponseBuilder) Finalize(totalCount, returnedCount int) string {
	if rb.truncated || returnedCount < totalCount {
		rb.buf.WriteString(fmt.Sprintf(
			"\n---\n*Showing %d of %d rows (truncated to ~%d tokens). Narrow the question or increase `max_response_tokens`.*\n",
			returnedCount, totalCount, rb.maxTokens))
	}
	return rb.buf.String()
}

// Truncated reports whether any content was dropped.
func (rb *ResponseBuilder) Truncated() bool { return rb.truncated }

func (rb *ResponseBuilder) write(s string) bool {
	cost := len(s) / 4
	if rb.tokenEstimate+cost > rb.maxTokens {
		rb.truncated = true
		return false
	}
	rb.buf.WriteString(s)
	rb.tokenEstimate += cost
	return true
}

func columns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
