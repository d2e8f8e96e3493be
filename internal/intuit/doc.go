// Package intuit implements authenticated access to the Intuit QuickBooks
// API: the request executor that attaches bearer tokens and recovers from
// stale-token rejections, the GraphQL passthrough client, and the narrow
// REST company-info fallback.
//
// GraphQL-level errors returned by the provider are data, not faults: the
// full response envelope is always passed back to the caller so the agent
// can interpret schema and query errors itself. Only authentication and
// transport failures surface as Go errors, and only the GraphQL client
// converts those into fallback attempts or final failures.
package intuit
