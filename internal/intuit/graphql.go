package intuit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/QuentinCody/intuit-mcp-server/internal/oauth"
	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"
)

// Client executes GraphQL operations against the Intuit API. It injects the
// default realm ID into variables, passes the provider's response envelope
// through verbatim, and falls back to the REST company-info endpoint for
// company-name queries when GraphQL itself is unreachable.
type Client struct {
	executor       *Executor
	graphqlURL     string
	companyInfoURL string
	companyID      string
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Executor performs the authenticated HTTP calls. Required.
	Executor *Executor

	// GraphQLURL is the GraphQL endpoint.
	GraphQLURL string

	// CompanyInfoURL is the REST company-info endpoint used by the fallback
	// path. Empty disables the fallback.
	CompanyInfoURL string

	// CompanyID is the default realm ID injected into GraphQL variables
	// when absent. Empty disables injection.
	CompanyID string
}

// NewClient creates a Client.
func NewClient(opts ClientOptions) *Client {
	return &Client{
		executor:       opts.Executor,
		graphqlURL:     opts.GraphQLURL,
		companyInfoURL: opts.CompanyInfoURL,
		companyID:      opts.CompanyID,
	}
}

// graphqlRequest is the POST body sent to the GraphQL endpoint.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// ExecuteGraphQL runs a GraphQL query or mutation and returns the provider's
// response envelope as a JSON string. GraphQL-level errors in the envelope
// are returned as data; only auth and transport failures produce a Go error,
// after the fallback path (if eligible) has also failed.
func (c *Client) ExecuteGraphQL(ctx context.Context, query string, variables map[string]interface{}) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query must be a non-empty string")
	}

	query, variables = normalizeQuery(query, variables)
	variables = c.injectRealmID(variables)

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return "", fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	logging.Debug("GraphQL", "Executing query (first 100 chars): %.100s", query)

	body, execErr := c.executor.Execute(ctx, RequestSpec{
		Method:      "POST",
		URL:         c.graphqlURL,
		Body:        payload,
		ContentType: "application/json",
		Accept:      "application/json",
	})
	if execErr == nil {
		return string(body), nil
	}

	if c.fallbackEligible(query, execErr) {
		logging.Info("GraphQL", "GraphQL call failed, attempting REST company-info fallback")
		result, fallbackErr := c.companyInfoFallback(ctx)
		if fallbackErr == nil {
			return result, nil
		}
		logging.Error("GraphQL", fallbackErr, "REST fallback also failed")
	}

	return "", execErr
}

// fallbackEligible reports whether the REST fallback applies: the primary
// call must have failed at the auth or transport level, the query must be a
// company-name lookup, and a company ID must be configured.
func (c *Client) fallbackEligible(query string, err error) bool {
	if c.companyInfoURL == "" || c.companyID == "" {
		return false
	}
	var authErr *oauth.AuthError
	var transportErr *TransportError
	if !errors.As(err, &authErr) && !errors.As(err, &transportErr) {
		return false
	}
	return isCompanyNameQuery(query)
}

// injectRealmID returns variables with the default realm ID added when one
// is configured and the caller did not supply their own. The input map is
// never mutated.
func (c *Client) injectRealmID(variables map[string]interface{}) map[string]interface{} {
	if c.companyID == "" {
		return variables
	}
	if _, present := variables["realmId"]; present {
		return variables
	}

	injected := make(map[string]interface{}, len(variables)+1)
	for k, v := range variables {
		injected[k] = v
	}
	injected["realmId"] = c.companyID
	return injected
}

// normalizeQuery unwraps queries that arrive as a JSON object containing a
// "query" field, a shape some agents produce instead of a raw GraphQL
// document. Wrapper variables are used only when the caller supplied none.
func normalizeQuery(query string, variables map[string]interface{}) (string, map[string]interface{}) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(trimmed, "{") || !strings.Contains(trimmed, `"query"`) {
		return query, variables
	}

	var wrapper struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil || wrapper.Query == "" {
		return query, variables
	}

	logging.Debug("GraphQL", "Unwrapped JSON-encoded query object")
	if variables == nil {
		variables = wrapper.Variables
	}
	return wrapper.Query, variables
}

// FormatFailure renders an auth or transport failure as a GraphQL-shaped
// error envelope, so callers see a consistent JSON contract for failures.
func FormatFailure(err error) string {
	classification := "Error"
	var authErr *oauth.AuthError
	var transportErr *TransportError
	switch {
	case errors.As(err, &authErr):
		classification = "AuthError"
	case errors.As(err, &transportErr):
		classification = "TransportError"
	}

	envelope := map[string]interface{}{
		"errors": []map[string]interface{}{
			{
				"message": err.Error(),
				"extensions": map[string]interface{}{
					"classification": classification,
				},
			},
		},
	}
	data, marshalErr := json.Marshal(envelope)
	if marshalErr != nil {
		return fmt.Sprintf(`{"errors":[{"message":%q}]}`, err.Error())
	}
	return string(data)
}
