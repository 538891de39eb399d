package auth

import "fmt"

// AuthError represents a failed token exchange. It is fatal to the call
// that triggered the refresh; the token source never retries it on its own.
type AuthError struct {
	Endpoint string
	Protocol Protocol
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s, %s): %s: %v",
			e.Protocol, e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s, %s): %s",
		e.Protocol, e.Endpoint, e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *AuthError) Unwrap() error {
	return e.Err
}
