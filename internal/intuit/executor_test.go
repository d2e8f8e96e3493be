package intuit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/QuentinCody/intuit-mcp-server/internal/oauth"
)

// testTokenServer fakes the OAuth token endpoint, minting sequentially
// numbered tokens so tests can observe which refresh produced a request.
type testTokenServer struct {
	server   *httptest.Server
	refreshs atomic.Int64
}

func newTestTokenServer(t *testing.T) *testTokenServer {
	t.Helper()
	ts := &testTokenServer{}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.refreshs.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(ts.server.Close)
	return ts
}

func newTestExecutor(t *testing.T, tokens *testTokenServer) *Executor {
	t.Helper()
	refresher := oauth.NewRefresher(oauth.RefresherOptions{
		TokenEndpoint: tokens.server.URL,
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		RefreshToken:  "refresh-token",
	})
	store := oauth.NewCredentialStore(oauth.CredentialStoreOptions{Refresher: refresher})
	return NewExecutor(ExecutorOptions{Store: store, UserAgent: "IntuitMCPServer/test"})
}

func TestExecutor_AttachesBearerToken(t *testing.T) {
	tokens := newTestTokenServer(t)

	var gotAuth, gotUserAgent string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer api.Close()

	executor := newTestExecutor(t, tokens)
	body, err := executor.Execute(context.Background(), RequestSpec{Method: "GET", URL: api.URL})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if string(body) != `{"data":{}}` {
		t.Errorf("Unexpected body: %s", body)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Expected Authorization %q, got %q", "Bearer tok-1", gotAuth)
	}
	if gotUserAgent != "IntuitMCPServer/test" {
		t.Errorf("Expected test user agent, got %q", gotUserAgent)
	}
	if tokens.refreshs.Load() != 1 {
		t.Errorf("Expected 1 refresh, got %d", tokens.refreshs.Load())
	}
}

func TestExecutor_RetriesOnceAfter401(t *testing.T) {
	tokens := newTestTokenServer(t)

	var apiCalls atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		// The retry must carry the token from the forced refresh.
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-2" {
			t.Errorf("Retry used %q, expected freshly refreshed tok-2", auth)
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer api.Close()

	executor := newTestExecutor(t, tokens)
	body, err := executor.Execute(context.Background(), RequestSpec{Method: "GET", URL: api.URL})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if string(body) != `{"data":{"ok":true}}` {
		t.Errorf("Unexpected body: %s", body)
	}
	if apiCalls.Load() != 2 {
		t.Errorf("Expected exactly 2 API calls, got %d", apiCalls.Load())
	}
	if tokens.refreshs.Load() != 2 {
		t.Errorf("Expected 2 refreshes (initial + forced), got %d", tokens.refreshs.Load())
	}
}

func TestExecutor_SecondAuthFailureIsTerminal(t *testing.T) {
	tokens := newTestTokenServer(t)

	var apiCalls atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	executor := newTestExecutor(t, tokens)
	_, err := executor.Execute(context.Background(), RequestSpec{Method: "GET", URL: api.URL})

	var authErr *oauth.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *oauth.AuthError, got %T: %v", err, err)
	}
	if apiCalls.Load() != 2 {
		t.Errorf("Expected exactly 2 API calls (no second retry), got %d", apiCalls.Load())
	}
}

func TestExecutor_EmbeddedAuthCodeTriggersRetry(t *testing.T) {
	tokens := newTestTokenServer(t)

	var apiCalls atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			// Auth failure embedded in a 200 GraphQL envelope.
			w.Write([]byte(`{"errors":[{"message":"token expired","extensions":{"code":"UNAUTHENTICATED"}}]}`))
			return
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer api.Close()

	executor := newTestExecutor(t, tokens)
	body, err := executor.Execute(context.Background(), RequestSpec{Method: "POST", URL: api.URL, Body: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if string(body) != `{"data":{"ok":true}}` {
		t.Errorf("Unexpected body: %s", body)
	}
	if apiCalls.Load() != 2 {
		t.Errorf("Expected retry after embedded auth error, got %d calls", apiCalls.Load())
	}
}

func TestExecutor_NonAuthFailureIsNotRetried(t *testing.T) {
	tokens := newTestTokenServer(t)

	var apiCalls atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream broke"))
	}))
	defer api.Close()

	executor := newTestExecutor(t, tokens)
	_, err := executor.Execute(context.Background(), RequestSpec{Method: "GET", URL: api.URL})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected *TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", transportErr.StatusCode)
	}
	if apiCalls.Load() != 1 {
		t.Errorf("Expected exactly 1 API call for non-auth failure, got %d", apiCalls.Load())
	}
	if tokens.refreshs.Load() != 1 {
		t.Errorf("Expected no forced refresh, got %d refreshes", tokens.refreshs.Load())
	}
}

func TestExecutor_NetworkFailure(t *testing.T) {
	tokens := newTestTokenServer(t)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	api.Close() // Closed before use to force a connection error

	executor := newTestExecutor(t, tokens)
	_, err := executor.Execute(context.Background(), RequestSpec{Method: "GET", URL: api.URL})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected *TransportError for network failure, got %T: %v", err, err)
	}
}

func TestExecutor_RefreshFailurePropagates(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenServer.Close()

	refresher := oauth.NewRefresher(oauth.RefresherOptions{
		TokenEndpoint: tokenServer.URL,
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		RefreshToken:  "revoked",
	})
	store := oauth.NewCredentialStore(oauth.CredentialStoreOptions{Refresher: refresher})
	executor := NewExecutor(ExecutorOptions{Store: store})

	_, err := executor.Execute(context.Background(), RequestSpec{Method: "GET", URL: "http://unused.invalid"})

	var authErr *oauth.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *oauth.AuthError, got %T: %v", err, err)
	}
}

func TestIsAuthFailure(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected bool
	}{
		{"401", 401, "", true},
		{"403", 403, "", true},
		{"200 clean", 200, `{"data":{}}`, false},
		{"200 unauthenticated code", 200, `{"errors":[{"extensions":{"code":"UNAUTHENTICATED"}}]}`, true},
		{"200 authentication error code", 200, `{"errors":[{"extensions":{"code":"AUTHENTICATION_ERROR"}}]}`, true},
		{"200 other graphql error", 200, `{"errors":[{"extensions":{"code":"VALIDATION_ERROR"}}]}`, false},
		{"200 errors no extensions", 200, `{"errors":[{"message":"bad field"}]}`, false},
		{"500", 500, "", false},
		{"200 not json", 200, "<html>", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isAuthFailure(tc.status, []byte(tc.body)); got != tc.expected {
				t.Errorf("isAuthFailure(%d, %q) = %v, want %v", tc.status, tc.body, got, tc.expected)
			}
		})
	}
}
