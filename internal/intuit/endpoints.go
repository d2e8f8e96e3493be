package intuit

import (
	"fmt"

	"github.com/QuentinCody/intuit-mcp-server/internal/config"
)

// API hosts per environment. Sandbox and production are distinct hosts for
// every surface, including the token endpoint.
const (
	sandboxGraphQLURL    = "https://public-e2e.api.intuit.com/2020-04/graphql"
	productionGraphQLURL = "https://public.api.intuit.com/2020-04/graphql"

	sandboxTokenURL    = "https://oauth-e2e.platform.intuit.com/oauth2/v1/tokens/bearer"
	productionTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

	sandboxRESTBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionRESTBaseURL = "https://quickbooks.api.intuit.com"
)

// GraphQLURL returns the GraphQL endpoint for the given environment.
func GraphQLURL(env config.Environment) string {
	if env == config.EnvironmentProduction {
		return productionGraphQLURL
	}
	return sandboxGraphQLURL
}

// TokenURL returns the OAuth token endpoint for the given environment.
func TokenURL(env config.Environment) string {
	if env == config.EnvironmentProduction {
		return productionTokenURL
	}
	return sandboxTokenURL
}

// CompanyInfoURL returns the REST company-info endpoint for the given
// environment and company (realm) ID.
func CompanyInfoURL(env config.Environment, companyID string) string {
	base := sandboxRESTBaseURL
	if env == config.EnvironmentProduction {
		base = productionRESTBaseURL
	}
	return fmt.Sprintf("%s/v3/company/%s/companyinfo/%s", base, companyID, companyID)
}
