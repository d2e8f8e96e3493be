package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for token endpoint requests.
const DefaultHTTPTimeout = 30 * time.Second

// TokenRefresher exchanges a refresh token for a new access token.
// CredentialStore depends on this interface so tests can substitute fakes.
type TokenRefresher interface {
	Refresh(ctx context.Context) (*Token, error)
}

// Refresher performs the OAuth 2.0 refresh_token grant against the Intuit
// token endpoint. It holds the immutable client identity and refresh
// credential for the process lifetime; refresh-token rotation is not handled.
type Refresher struct {
	tokenEndpoint string
	clientID      string
	clientSecret  string
	refreshToken  string
	httpClient    *http.Client
}

// RefresherOptions configures a Refresher.
type RefresherOptions struct {
	// TokenEndpoint is the environment-appropriate token URL.
	TokenEndpoint string

	// ClientID and ClientSecret identify the OAuth application.
	ClientID     string
	ClientSecret string

	// RefreshToken is the long-lived credential to exchange.
	RefreshToken string

	// HTTPClient overrides the default client (30s timeout). Optional.
	HTTPClient *http.Client
}

// NewRefresher creates a Refresher.
func NewRefresher(opts RefresherOptions) *Refresher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Refresher{
		tokenEndpoint: opts.TokenEndpoint,
		clientID:      opts.ClientID,
		clientSecret:  opts.ClientSecret,
		refreshToken:  opts.RefreshToken,
		httpClient:    httpClient,
	}
}

// Refresh exchanges the refresh token for a new access token. Any failure
// (network, non-2xx status, or a response missing required fields) returns a
// *AuthError carrying the provider's error payload when one was available.
// Refresh never retries internally; retry policy belongs to the caller.
func (r *Refresher) Refresh(ctx context.Context) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", r.refreshToken)
	data.Set("client_id", r.clientID)
	data.Set("client_secret", r.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", r.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &AuthError{Op: "refresh", Reason: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	logging.Debug("OAuth", "Requesting new access token from %s (client_id=%s)",
		r.tokenEndpoint, logging.TruncateSecret(r.clientID))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Op: "refresh", Reason: fmt.Errorf("token request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Op: "refresh", StatusCode: resp.StatusCode,
			Reason: fmt.Errorf("failed to read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AuthError{
			Op:            "refresh",
			StatusCode:    resp.StatusCode,
			ProviderError: providerErrorMessage(body),
		}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &AuthError{Op: "refresh", StatusCode: resp.StatusCode,
			Reason: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if token.AccessToken == "" || token.ExpiresIn <= 0 {
		return nil, &AuthError{Op: "refresh", StatusCode: resp.StatusCode,
			Reason: fmt.Errorf("token response missing access_token or expires_in")}
	}

	token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	logging.Debug("OAuth", "Received new access token %s (expires in %ds)",
		logging.TruncateSecret(token.AccessToken), token.ExpiresIn)

	return &token, nil
}

// providerErrorMessage extracts a human-readable message from an OAuth error
// response body. Falls back to a truncated copy of the raw body.
func providerErrorMessage(body []byte) string {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		if payload.ErrorDescription != "" {
			return fmt.Sprintf("%s: %s", payload.Error, payload.ErrorDescription)
		}
		return payload.Error
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
