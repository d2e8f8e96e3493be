package intuit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// isCompanyNameQuery is the predicate gating the REST fallback. It matches
// exactly when the query, lowercased, contains both "company" and
// "companyname".
func isCompanyNameQuery(query string) bool {
	lower := strings.ToLower(query)
	return strings.Contains(lower, "company") && strings.Contains(lower, "companyname")
}

// companyInfoResponse is the subset of the REST companyinfo payload the
// fallback reshapes into the GraphQL envelope.
type companyInfoResponse struct {
	CompanyInfo struct {
		CompanyName string                 `json:"CompanyName"`
		LegalName   string                 `json:"LegalName"`
		CompanyAddr map[string]interface{} `json:"CompanyAddr"`
	} `json:"CompanyInfo"`
}

// companyInfoFallback issues a single REST GET to the company-info endpoint
// and reshapes the response into a GraphQL-result-shaped envelope, so the
// caller sees a consistent contract regardless of which path served the data.
func (c *Client) companyInfoFallback(ctx context.Context) (string, error) {
	body, err := c.executor.Execute(ctx, RequestSpec{
		Method: "GET",
		URL:    c.companyInfoURL,
		Accept: "application/json",
	})
	if err != nil {
		return "", err
	}

	var info companyInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return "", &TransportError{
			URL:    c.companyInfoURL,
			Body:   truncateBody(body),
			Reason: fmt.Errorf("failed to parse company info response: %w", err),
		}
	}

	envelope := map[string]interface{}{
		"data": map[string]interface{}{
			"company": map[string]interface{}{
				"companyName": info.CompanyInfo.CompanyName,
				"legalName":   info.CompanyInfo.LegalName,
				"companyAddr": info.CompanyInfo.CompanyAddr,
				"note":        "This data was retrieved using REST API fallback",
			},
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to encode fallback envelope: %w", err)
	}
	return string(data), nil
}
