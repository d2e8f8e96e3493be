package intuit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/QuentinCody/intuit-mcp-server/internal/oauth"
	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"
)

// defaultHTTPTimeout bounds every outbound API call.
const defaultHTTPTimeout = 30 * time.Second

// RequestSpec describes a single outbound API request. The Authorization
// header is managed by the Executor and must not be set here.
type RequestSpec struct {
	// Method is the HTTP method (GET, POST).
	Method string

	// URL is the full endpoint URL.
	URL string

	// Body is the request body, nil for body-less requests.
	Body []byte

	// ContentType is sent when Body is present.
	ContentType string

	// Accept is the desired response content type.
	Accept string
}

// Executor performs outbound HTTP calls with a valid bearer token attached,
// transparently recovering from a stale-token rejection exactly once per
// call. It makes no retry decision for non-auth failures.
type Executor struct {
	store      *oauth.CredentialStore
	httpClient *http.Client
	userAgent  string
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// Store supplies valid tokens. Required.
	Store *oauth.CredentialStore

	// UserAgent is sent on every request.
	UserAgent string

	// HTTPClient overrides the default client (30s timeout). Optional.
	HTTPClient *http.Client
}

// NewExecutor creates an Executor.
func NewExecutor(opts ExecutorOptions) *Executor {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Executor{
		store:      opts.Store,
		httpClient: httpClient,
		userAgent:  opts.UserAgent,
	}
}

// Execute performs the request and returns the raw response body.
//
// A response that indicates an authentication failure (HTTP 401/403, or an
// auth error code embedded in a 200 GraphQL payload) invalidates the cached
// token and retries once with a freshly refreshed one; a second auth
// rejection returns a *oauth.AuthError. Every other failure returns a
// *TransportError with no retry.
func (e *Executor) Execute(ctx context.Context, spec RequestSpec) ([]byte, error) {
	callID := uuid.NewString()[:8]

	for attempt := 0; ; attempt++ {
		token, err := e.store.GetValidToken(ctx)
		if err != nil {
			return nil, err
		}

		body, status, err := e.doRequest(ctx, spec, token, callID)
		if err != nil {
			return nil, err
		}

		if !isAuthFailure(status, body) {
			if status < 200 || status >= 300 {
				logging.Warn("Executor", "call=%s %s %s returned status %d", callID, spec.Method, spec.URL, status)
				return nil, &TransportError{URL: spec.URL, StatusCode: status, Body: truncateBody(body)}
			}
			return body, nil
		}

		if attempt >= 1 {
			logging.Warn("Executor", "call=%s rejected as unauthenticated after forced refresh", callID)
			return nil, &oauth.AuthError{
				Op:            "request",
				StatusCode:    status,
				ProviderError: truncateBody(body),
			}
		}

		logging.Debug("Executor", "call=%s auth failure (status %d), refreshing token and retrying once", callID, status)
		e.store.Invalidate()
	}
}

// doRequest issues one HTTP request with the given token attached.
// Network-level failures return a *TransportError.
func (e *Executor) doRequest(ctx context.Context, spec RequestSpec, token *oauth.Token, callID string) ([]byte, int, error) {
	var reader io.Reader
	if spec.Body != nil {
		reader = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, reader)
	if err != nil {
		return nil, 0, &TransportError{URL: spec.URL, Reason: err}
	}

	token.ToOAuth2Token().SetAuthHeader(req)
	if spec.Body != nil && spec.ContentType != "" {
		req.Header.Set("Content-Type", spec.ContentType)
	}
	if spec.Accept != "" {
		req.Header.Set("Accept", spec.Accept)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	logging.Debug("Executor", "call=%s %s %s", callID, spec.Method, spec.URL)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{URL: spec.URL, Reason: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{URL: spec.URL, StatusCode: resp.StatusCode, Reason: err}
	}

	return body, resp.StatusCode, nil
}

// authErrorCodes are the GraphQL error extension codes the provider uses for
// authentication failures embedded in an otherwise-successful response.
var authErrorCodes = map[string]bool{
	"UNAUTHENTICATED":      true,
	"AUTHENTICATION_ERROR": true,
}

// isAuthFailure reports whether a response demands a token refresh.
// HTTP 401 and 403 always do; a 200 does when its GraphQL errors array
// carries an authentication error code.
func isAuthFailure(status int, body []byte) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	if status != http.StatusOK {
		return false
	}

	var envelope struct {
		Errors []struct {
			Extensions struct {
				Code string `json:"code"`
			} `json:"extensions"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	for _, gqlErr := range envelope.Errors {
		if authErrorCodes[gqlErr.Extensions.Code] {
			return true
		}
	}
	return false
}
