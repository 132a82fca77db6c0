package tools

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register adds every expression graph tool to server. A nil counter
// disables live counts in describe_graph_schema.
func Register(server *sdkmcp.Server, asker Asker, counter NodeCounter, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ask_expression_graph",
		Description: "Ask a natural language question about GDC projects, diseases, samples, measurements, expression values and genes. Returns the answer, the generated read-only Cypher and the result rows.",
	}, WrapHandler[AskExpressionGraphParams](NewAskExpressionGraphHandler(asker, logger)))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "describe_graph_schema",
		Description: "Describe node labels, their properties and the allowed relationship directions of the expression graph. Set include_counts for live node counts.",
	}, WrapHandler[DescribeGraphSchemaParams](NewDescribeGraphSchemaHandler(counter, logger)))
}
