package config

import (
	"fmt"
	"strings"
)

// Environment selects the Intuit API environment the server talks to.
type Environment string

const (
	// EnvironmentSandbox targets Intuit's sandbox hosts.
	EnvironmentSandbox Environment = "sandbox"
	// EnvironmentProduction targets Intuit's production hosts.
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment validates and normalizes an environment name.
func ParseEnvironment(name string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(name))) {
	case EnvironmentSandbox, "":
		return EnvironmentSandbox, nil
	case EnvironmentProduction:
		return EnvironmentProduction, nil
	default:
		return "", fmt.Errorf("unknown environment %q (expected %q or %q)",
			name, EnvironmentSandbox, EnvironmentProduction)
	}
}

// Config holds everything the server needs to authenticate with and call the
// Intuit API. It is immutable after startup: the refresh token is never
// rotated during the process lifetime, and the environment never changes.
type Config struct {
	// ClientID is the OAuth application client ID.
	ClientID string `yaml:"clientId"`

	// ClientSecret is the OAuth application client secret.
	ClientSecret string `yaml:"clientSecret"`

	// RefreshToken is the long-lived credential exchanged for access tokens.
	RefreshToken string `yaml:"refreshToken"`

	// Environment selects sandbox or production hosts. Defaults to sandbox.
	Environment Environment `yaml:"environment"`

	// CompanyID is the default realm (tenant) injected into GraphQL variables
	// when the caller does not supply one. Optional, but the REST company-info
	// fallback is only available when it is set.
	CompanyID string `yaml:"companyId"`
}

// ValidationError reports required configuration values that are missing.
// It is a configuration fault, distinct from authentication failures: a
// request made with an incomplete Config must never reach the token endpoint.
type ValidationError struct {
	// Missing lists the environment variable names that were not set.
	Missing []string
}

// Error returns a message naming every missing value.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Is allows errors.Is() to match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// Validate checks that all required credentials are present.
// Returns a *ValidationError naming each missing value.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "INTUIT_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "INTUIT_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "INTUIT_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
