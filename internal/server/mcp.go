package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/QuentinCody/intuit-mcp-server/internal/intuit"
)

// MCPServer exposes the Intuit GraphQL executor as an MCP tool over stdio.
// It is the bridge between an AI assistant and the Intuit API: the assistant
// calls intuit_execute_graphql, this server handles authentication and
// fallback, and the provider's JSON envelope flows back as the tool result.
type MCPServer struct {
	client    *intuit.Client
	mcpServer *server.MCPServer
}

// NewMCPServer creates an MCP server exposing the intuit_execute_graphql tool.
func NewMCPServer(client *intuit.Client, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"intuit",
		version,
		server.WithToolCapabilities(false),
	)

	s := &MCPServer{
		client:    client,
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s
}

// Start serves MCP over stdio. Blocks until the stdio connection is closed
// by the client.
func (s *MCPServer) Start(ctx context.Context) error {
	return server.ServeStdio(s.mcpServer)
}

// registerTools registers the single exposed tool.
func (s *MCPServer) registerTools() {
	executeTool := mcp.NewTool("intuit_execute_graphql",
		mcp.WithDescription(executeGraphQLDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The complete GraphQL query or mutation to execute."),
		),
		mcp.WithObject("variables",
			mcp.Description("Optional variables for the query, as a JSON object whose keys match the variable names defined in the query."),
		),
	)
	s.mcpServer.AddTool(executeTool, s.handleExecuteGraphQL)
}

// executeGraphQLDescription documents the tool for the calling agent,
// including schema discovery via introspection and common operations.
const executeGraphQLDescription = `Executes an arbitrary GraphQL query or mutation against the Intuit API.
This tool provides flexibility for any Intuit GraphQL operation by directly
passing queries with full control over selection sets and variables.

## GraphQL Introspection
You can discover the Intuit API schema using GraphQL introspection queries such as:

    query IntrospectionQuery {
      __schema {
        queryType { name }
        types {
          name
          kind
          description
          fields {
            name
            description
            type { name kind }
          }
        }
      }
    }

## Common Intuit Operations

### Querying QuickBooks Company Information

    query GetCompanyInfo {
      company {
        companyName
        companyAddr {
          line1
          city
          country
          postalCode
        }
        legalCountry
        fiscalYearStartMonth
      }
    }

### Fetching Customers

    query GetCustomers($first: Int!) {
      customers(first: $first) {
        edges {
          node {
            id
            displayName
            primaryEmailAddr { address }
          }
        }
        pageInfo {
          hasNextPage
          endCursor
        }
      }
    }

## Pagination
For paginated results, use the "after" parameter with the "endCursor" from
previous queries.

## Error Handling Tips
- Check for the "errors" array in the response
- Common error reasons:
  - Invalid GraphQL syntax: verify query structure
  - Unknown fields: check field names through introspection
  - Missing required fields: ensure all required fields are in queries
  - Permission issues: verify API keys have appropriate permissions

Returns a JSON string containing the complete response from Intuit,
including data and errors if any.`
