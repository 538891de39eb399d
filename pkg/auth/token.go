package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for token refresh operations.
var (
	authRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sypht_auth_refreshes_total",
		Help: "Total token refresh attempts by outcome",
	}, []string{"outcome"})
)

// tokenExpiryBuffer is subtracted from the advertised token lifetime so a
// token is never presented while racing against mid-flight expiry.
const tokenExpiryBuffer = 10 * time.Second

// TokenSource owns the short-lived access token and its expiry instant.
// Token transparently re-authenticates once the cached token passes its
// buffered expiry. A TokenSource is not safe for unsynchronized use from
// multiple goroutines; callers sharing one must synchronize externally.
type TokenSource struct {
	creds    Credentials
	endpoint string
	audience string
	protocol Protocol

	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time

	token  string
	expiry time.Time
}

// NewTokenSource creates a token source for the given credentials and
// authentication endpoint. The protocol variant is resolved here, once;
// an unrecognized endpoint shape is a configuration error. timeout bounds
// each token exchange request; non-positive means 30s. No network traffic
// happens until the first Token call.
func NewTokenSource(creds Credentials, endpoint, audience string, timeout time.Duration) (*TokenSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	protocol, err := DetectProtocol(endpoint)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &TokenSource{
		creds:    creds,
		endpoint: endpoint,
		audience: audience,
		protocol: protocol,
		httpClient: &http.Client{
			Timeout: timeout,
			// The token exchange depends on the literal response; a
			// redirected one must not be followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: log.With().Str("component", "sypht-auth").Logger(),
		now:    time.Now,
	}, nil
}

// ClientID returns the client identifier half of the credentials. The
// secret is never exposed.
func (ts *TokenSource) ClientID() string {
	return ts.creds.ClientID
}

// Protocol returns the protocol variant resolved at construction.
func (ts *TokenSource) Protocol() Protocol {
	return ts.protocol
}

// Expired reports whether the cached token is absent or past its buffered
// expiry instant.
func (ts *TokenSource) Expired() bool {
	return ts.token == "" || ts.now().After(ts.expiry)
}

// Token returns a valid bearer token, refreshing synchronously first if the
// cached one is absent or expired. Only the refresh path touches the
// network. A failed refresh is returned as an *AuthError and is not
// retried here; the next call will attempt a fresh exchange.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if !ts.Expired() {
		return ts.token, nil
	}

	if err := ts.refresh(ctx); err != nil {
		authRefreshesTotal.WithLabelValues("failure").Inc()
		return "", err
	}

	authRefreshesTotal.WithLabelValues("success").Inc()
	return ts.token, nil
}

// refresh performs one token exchange and replaces the cached token on
// success. The stored expiry already includes the safety buffer.
func (ts *TokenSource) refresh(ctx context.Context) error {
	var (
		token     string
		expiresIn int64
		err       error
	)

	switch ts.protocol {
	case ProtocolLegacy:
		token, expiresIn, err = ts.authenticateLegacy(ctx)
	case ProtocolV2:
		token, expiresIn, err = ts.authenticateV2(ctx)
	default:
		return &AuthError{Endpoint: ts.endpoint, Protocol: ts.protocol, Reason: "unsupported protocol"}
	}
	if err != nil {
		ts.logger.Error().Err(err).Str("protocol", ts.protocol.String()).Msg("Token refresh failed")
		return err
	}

	ts.token = token
	ts.expiry = ts.now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer)

	ts.logger.Debug().
		Str("protocol", ts.protocol.String()).
		Time("expiry", ts.expiry).
		Msg("Access token refreshed")

	return nil
}

// authenticateLegacy exchanges the credentials via the legacy form-encoded
// grant: client_id, client_secret, audience and grant_type as form fields.
// A body carrying error_description signals rejection.
func (ts *TokenSource) authenticateLegacy(ctx context.Context) (string, int64, error) {
	form := url.Values{}
	form.Set("client_id", ts.creds.ClientID)
	form.Set("client_secret", ts.creds.ClientSecret)
	form.Set("audience", ts.audience)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, ts.wrapErr("create request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return ts.exchange(req, func(r *tokenResponse) string { return r.ErrorDescription })
}

// authenticateV2 exchanges the credentials via the v2 grant: the client
// identity travels in an HTTP Basic header, only client_id and grant_type
// in the body. A body carrying error signals rejection.
func (ts *TokenSource) authenticateV2(ctx context.Context) (string, int64, error) {
	body := url.Values{}
	body.Set("client_id", ts.creds.ClientID)
	body.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.endpoint,
		strings.NewReader(body.Encode()))
	if err != nil {
		return "", 0, ts.wrapErr("create request", err)
	}

	basic := base64.StdEncoding.EncodeToString(
		[]byte(ts.creds.ClientID + ":" + ts.creds.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return ts.exchange(req, func(r *tokenResponse) string { return r.Error })
}

// tokenResponse is the wire shape of both token endpoints.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchange sends one token request and decodes the response. errField
// extracts the protocol's error indicator from the body.
func (ts *TokenSource) exchange(req *http.Request, errField func(*tokenResponse) string) (string, int64, error) {
	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, ts.wrapErr("token request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, ts.wrapErr("read response", err)
	}

	var result tokenResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", 0, ts.wrapErr(fmt.Sprintf("decode response (status %d)", resp.StatusCode), err)
	}

	if reason := errField(&result); reason != "" {
		return "", 0, &AuthError{Endpoint: ts.endpoint, Protocol: ts.protocol, Reason: reason}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &AuthError{
			Endpoint: ts.endpoint,
			Protocol: ts.protocol,
			Reason:   fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	if result.AccessToken == "" || result.ExpiresIn <= 0 {
		return "", 0, &AuthError{
			Endpoint: ts.endpoint,
			Protocol: ts.protocol,
			Reason:   "response missing access_token or expires_in",
		}
	}

	return result.AccessToken, result.ExpiresIn, nil
}

func (ts *TokenSource) wrapErr(reason string, err error) error {
	return &AuthError{Endpoint: ts.endpoint, Protocol: ts.protocol, Reason: reason, Err: err}
}
