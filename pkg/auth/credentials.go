// Package auth implements OAuth client-credentials authentication for the
// Sypht API, including transparent access token refresh.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvAPIKey is the environment variable holding "<client_id>:<client_secret>".
const EnvAPIKey = "SYPHT_API_KEY"

// Errors returned while resolving credentials from the environment.
var (
	// ErrMissingAPIKey is returned when no credentials were passed and
	// SYPHT_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key configuration")

	// ErrInvalidAPIKey is returned when SYPHT_API_KEY is not a single
	// colon-separated client_id:client_secret pair.
	ErrInvalidAPIKey = errors.New("invalid API key configuration")

	// ErrMissingCredentials is returned when only one half of the
	// credential pair was provided.
	ErrMissingCredentials = errors.New("client credentials missing")
)

// Credentials holds the long-lived OAuth client identity. It is provided
// once at construction and never mutated afterwards.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CredentialsFromEnv reads credentials from the SYPHT_API_KEY environment
// variable, which must contain "<client_id>:<client_secret>".
func CredentialsFromEnv() (Credentials, error) {
	raw := os.Getenv(EnvAPIKey)
	if raw == "" {
		return Credentials{}, fmt.Errorf("%w: set %s='<client_id>:<client_secret>' or pass credentials explicitly",
			ErrMissingAPIKey, EnvAPIKey)
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return Credentials{}, fmt.Errorf("%w: %s must be a single colon-separated value '<client_id>:<client_secret>'",
			ErrInvalidAPIKey, EnvAPIKey)
	}

	return Credentials{ClientID: parts[0], ClientSecret: parts[1]}, nil
}

// Validate checks that both halves of the credential pair are present.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// String implements fmt.Stringer with the secret redacted. Credentials must
// never reach logs or serialized output in clear text.
func (c Credentials) String() string {
	return c.ClientID + ":<redacted>"
}
