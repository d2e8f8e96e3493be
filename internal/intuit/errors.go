package intuit

import "fmt"

// TransportError indicates a network or HTTP-layer failure unrelated to
// authentication: timeouts, 5xx responses, malformed bodies. It is never
// retried by the executor; the only recovery path is the GraphQL client's
// REST fallback for company-name queries.
type TransportError struct {
	// URL is the endpoint that failed.
	URL string

	// StatusCode is the HTTP status, or 0 when the request never completed.
	StatusCode int

	// Body is a truncated copy of the response body, if one was received.
	Body string

	// Reason is the underlying error, if any.
	Reason error
}

// Error returns a descriptive message for the failure.
func (e *TransportError) Error() string {
	msg := fmt.Sprintf("request to %s failed", e.URL)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Reason != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Reason)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to match any TransportError.
func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}

// truncateBody shortens a response body for inclusion in error messages.
func truncateBody(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen])
	}
	return string(body)
}
