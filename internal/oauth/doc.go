// Package oauth implements the credential lifecycle for the Intuit API:
// obtaining, caching, and transparently refreshing an OAuth 2.0 access token.
//
// # Components
//
//   - Token: an access token with its computed expiry
//   - Refresher: performs the refresh_token grant against the token endpoint
//   - CredentialStore: single source of truth for the current token
//
// # Lifecycle
//
// The access token is never persisted: every process start performs at least
// one refresh before the first authenticated call. The token is replaced
// wholesale on every successful refresh and is considered valid only while
// the current time is more than the expiry margin before its expiration,
// which keeps in-flight requests from racing the expiry.
//
// # Concurrency
//
// CredentialStore serializes refreshes with a singleflight group: any number
// of callers observing an expired token collapse into one refresh HTTP call,
// and every caller receives that single call's result. Requests made with a
// token reference already in hand need no further coordination.
//
// Tokens and refresh credentials are never written to logs.
package oauth
