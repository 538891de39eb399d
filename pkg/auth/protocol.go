package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Default authentication endpoints.
const (
	// DefaultAuthEndpoint is the current (v2) token endpoint.
	DefaultAuthEndpoint = "https://auth.sypht.com/oauth2/token"

	// LegacyAuthEndpoint is the legacy token endpoint.
	LegacyAuthEndpoint = "https://login.sypht.com/oauth/token"
)

// ErrUnknownAuthEndpoint is returned when the authentication endpoint path
// matches neither supported protocol shape.
var ErrUnknownAuthEndpoint = errors.New("unrecognized authentication endpoint")

// Protocol identifies which of the two supported token-exchange wire
// protocols an endpoint speaks. It is resolved once at construction.
type Protocol int

const (
	// ProtocolLegacy submits the credentials as form fields ("/oauth/" endpoints).
	ProtocolLegacy Protocol = iota + 1

	// ProtocolV2 submits the credentials via HTTP Basic auth ("/oauth2/" endpoints).
	ProtocolV2
)

// String implements fmt.Stringer.
func (p Protocol) String() string {
	switch p {
	case ProtocolLegacy:
		return "legacy"
	case ProtocolV2:
		return "v2"
	default:
		return "unknown"
	}
}

// DetectProtocol resolves the protocol variant from the endpoint's path
// shape. Endpoints containing "/oauth/" are legacy, "/oauth2/" is v2;
// anything else is a configuration error.
func DetectProtocol(endpoint string) (Protocol, error) {
	switch {
	case strings.Contains(endpoint, "/oauth/"):
		return ProtocolLegacy, nil
	case strings.Contains(endpoint, "/oauth2/"):
		return ProtocolV2, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownAuthEndpoint, endpoint)
	}
}
