package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Token represents an Intuit OAuth access token with its computed expiry.
// Tokens are replaced wholesale on refresh, never mutated in place.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds, as reported by the
	// token endpoint.
	ExpiresIn int `json:"expires_in,omitempty"`

	// ExpiresAt is the calculated expiration timestamp.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpiredWithMargin reports whether the token is unusable at the given
// instant. A token counts as expired once now is within margin of ExpiresAt,
// so requests already in flight never carry a token about to lapse.
func (t *Token) IsExpiredWithMargin(now time.Time, margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(margin).After(t.ExpiresAt)
}

// ToOAuth2Token converts the Token to an oauth2.Token so callers can use
// golang.org/x/oauth2 helpers such as SetAuthHeader.
func (t *Token) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.ExpiresAt,
	}
}
