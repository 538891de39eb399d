// Package testutil provides testing utilities for the Sypht client.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Paths the mock serves token exchanges on, one per protocol variant.
const (
	LegacyAuthPath = "/oauth/token"
	V2AuthPath     = "/oauth2/token"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSypht is a configurable mock Sypht API server for testing. It serves
// both token endpoints and arbitrary data endpoints from one listener, so a
// client can point its base and auth endpoints at the same server.
type MockSypht struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Token exchange behavior
	tokenExpiresIn int

	// Tracking
	RequestCount      int
	AuthCount         int
	LastRequestHeader http.Header
	LastAuthHeader    http.Header
	LastAuthBody      string
}

// NewMockSypht creates a new mock server. By default every token exchange
// succeeds with a fresh token and every data request returns 200 with a
// small JSON body.
func NewMockSypht() *MockSypht {
	mock := &MockSypht{
		handlers:       make(map[string]func(w http.ResponseWriter, r *http.Request)),
		tokenExpiresIn: 3600,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		if r.URL.Path == LegacyAuthPath || r.URL.Path == V2AuthPath {
			mock.defaultAuthHandler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSypht) URL() string {
	return m.server.URL
}

// LegacyAuthURL returns the mock's legacy token endpoint.
func (m *MockSypht) LegacyAuthURL() string {
	return m.server.URL + LegacyAuthPath
}

// V2AuthURL returns the mock's v2 token endpoint.
func (m *MockSypht) V2AuthURL() string {
	return m.server.URL + V2AuthPath
}

// Close shuts down the mock server.
func (m *MockSypht) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSypht) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.AuthCount = 0
	m.LastRequestHeader = nil
	m.LastAuthHeader = nil
	m.LastAuthBody = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSypht) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockSypht) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetTokenExpiresIn sets the expires_in value issued with new tokens. A
// value at or below the client's expiry buffer makes every call refresh.
func (m *MockSypht) SetTokenExpiresIn(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenExpiresIn = seconds
}

// GetRequestCount returns the number of requests made to the server,
// token exchanges included.
func (m *MockSypht) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetAuthCount returns the number of token exchanges performed.
func (m *MockSypht) GetAuthCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AuthCount
}

// defaultAuthHandler issues a fresh token for either protocol variant.
func (m *MockSypht) defaultAuthHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.AuthCount++
	count := m.AuthCount
	expiresIn := m.tokenExpiresIn
	m.LastAuthHeader = r.Header.Clone()
	m.LastAuthBody = string(body)
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"access_token": "test-token-%d", "expires_in": %d}`, count, expiresIn)
}

// LastAuthForm parses the most recent token request body as form data.
func (m *MockSypht) LastAuthForm() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values, err := url.ParseQuery(m.LastAuthBody)
	if err != nil {
		return url.Values{}
	}
	return values
}

// defaultHandler provides a default data response.
func (m *MockSypht) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewAuthFailureLegacy creates a legacy-protocol rejection body.
func NewAuthFailureLegacy(description string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       fmt.Sprintf(`{"error_description": %q}`, description),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewAuthFailureV2 creates a v2-protocol rejection body.
func NewAuthFailureV2(code string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       fmt.Sprintf(`{"error": %q}`, code),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 502 Bad Gateway response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       `{"error": "Bad gateway"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
