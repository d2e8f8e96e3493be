package oauth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"
)

// tokenExpiryMargin is the safety margin applied when checking token
// expiration, matching the margin the provider integration has always used.
// A token inside the margin is treated as expired so that requests already
// in flight cannot be rejected mid-call.
const tokenExpiryMargin = 60 * time.Second

// CredentialStore is the single source of truth for the current access
// token. It lazily refreshes on first use, serves the cached token while it
// remains valid, and collapses concurrent refresh attempts into one HTTP call.
type CredentialStore struct {
	mu    sync.RWMutex
	token *Token

	refresher TokenRefresher
	now       func() time.Time

	// group deduplicates concurrent refreshes: all callers that observe an
	// invalid token share the result of a single Refresh call.
	group singleflight.Group
}

// CredentialStoreOptions configures a CredentialStore.
type CredentialStoreOptions struct {
	// Refresher obtains new tokens. Required.
	Refresher TokenRefresher

	// Clock overrides the time source for expiry checks. Nil uses time.Now.
	Clock func() time.Time
}

// NewCredentialStore creates a CredentialStore with no cached token; the
// first GetValidToken call triggers a refresh.
func NewCredentialStore(opts CredentialStoreOptions) *CredentialStore {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &CredentialStore{
		refresher: opts.Refresher,
		now:       clock,
	}
}

// GetValidToken returns the cached token if it is still valid, otherwise
// refreshes and returns the new token. On refresh failure the returned error
// is a *AuthError from the refresher.
func (s *CredentialStore) GetValidToken(ctx context.Context) (*Token, error) {
	if token := s.cachedValidToken(); token != nil {
		logging.Debug("OAuth", "Using cached token %s", logging.TruncateSecret(token.AccessToken))
		return token, nil
	}

	result, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		// A waiter queued behind a completed refresh may arrive here after the
		// token was already replaced; re-check before issuing another request.
		if token := s.cachedValidToken(); token != nil {
			return token, nil
		}

		token, err := s.refresher.Refresh(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.token = token
		s.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug("OAuth", "Refresh result shared with concurrent caller")
	}

	return result.(*Token), nil
}

// Invalidate marks the cached token as unusable, forcing the next
// GetValidToken call to refresh. Used after the provider rejects a token
// mid-flight (clock skew, early revocation).
func (s *CredentialStore) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
	logging.Debug("OAuth", "Cached token invalidated")
}

// cachedValidToken returns the cached token if present and outside the
// expiry margin, nil otherwise.
func (s *CredentialStore) cachedValidToken() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil || s.token.IsExpiredWithMargin(s.now(), tokenExpiryMargin) {
		return nil
	}
	return s.token
}
