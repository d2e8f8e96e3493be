package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/QuentinCody/intuit-mcp-server/internal/intuit"
	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"
)

// handleExecuteGraphQL handles the intuit_execute_graphql tool.
//
// Args:
//   - query (required): the GraphQL document to execute
//   - variables (optional): JSON object of query variables
//
// The provider's response envelope is returned verbatim as text, including
// any GraphQL-level errors array. Auth and transport failures that survive
// the retry and fallback paths come back as a structured tool error
// carrying the fault classification.
func (s *MCPServer) handleExecuteGraphQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required"), nil
	}

	var variables map[string]interface{}
	if raw := request.GetArguments()["variables"]; raw != nil {
		var ok bool
		variables, ok = raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("variables must be a JSON object"), nil
		}
	}

	logging.Debug("Server", "Executing intuit_execute_graphql (query first 100 chars): %.100s", query)

	result, err := s.client.ExecuteGraphQL(ctx, query, variables)
	if err != nil {
		return mcp.NewToolResultError(intuit.FormatFailure(err)), nil
	}

	return mcp.NewToolResultText(result), nil
}
