package oauth

import "fmt"

// AuthError indicates that the refresh-token exchange failed, or that a
// request was rejected as unauthenticated even after one forced refresh.
type AuthError struct {
	// Op names the failed operation ("refresh" or "request").
	Op string

	// StatusCode is the HTTP status returned by the provider, if any.
	StatusCode int

	// ProviderError is the provider's error payload, when one was returned.
	ProviderError string

	// Reason is the underlying error.
	Reason error
}

// Error returns a descriptive message including the provider payload when present.
func (e *AuthError) Error() string {
	msg := fmt.Sprintf("authentication failed during %s", e.Op)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.ProviderError != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.ProviderError)
	}
	if e.Reason != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Reason)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to match any AuthError.
func (e *AuthError) Is(target error) bool {
	_, ok := target.(*AuthError)
	return ok
}
