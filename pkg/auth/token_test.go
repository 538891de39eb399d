package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sypht-team/sypht-go-client/internal/testutil"
)

var testCreds = Credentials{ClientID: "test-client", ClientSecret: "test-secret"}

func newTestTokenSource(t *testing.T, endpoint string) *TokenSource {
	t.Helper()
	ts, err := NewTokenSource(testCreds, endpoint, "https://api.sypht.com", 0)
	require.NoError(t, err)
	return ts
}

func TestNewTokenSourceValidation(t *testing.T) {
	_, err := NewTokenSource(Credentials{}, DefaultAuthEndpoint, "", 0)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewTokenSource(testCreds, "https://auth.example.com/token", "", 0)
	assert.ErrorIs(t, err, ErrUnknownAuthEndpoint)

	ts, err := NewTokenSource(testCreds, DefaultAuthEndpoint, "", 0)
	require.NoError(t, err)
	assert.Equal(t, ProtocolV2, ts.Protocol())
	assert.Equal(t, "test-client", ts.ClientID())
}

func TestNewTokenSourceTimeout(t *testing.T) {
	ts, err := NewTokenSource(testCreds, DefaultAuthEndpoint, "", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, ts.httpClient.Timeout)

	// Non-positive falls back to the default.
	ts, err = NewTokenSource(testCreds, DefaultAuthEndpoint, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ts.httpClient.Timeout)
}

func TestTokenReusedWhileFresh(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()

	ts := newTestTokenSource(t, mock.V2AuthURL())
	ctx := context.Background()

	first, err := ts.Token(ctx)
	require.NoError(t, err)
	second, err := ts.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.GetAuthCount(), "a fresh token must not trigger a second exchange")
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()

	ts := newTestTokenSource(t, mock.V2AuthURL())

	now := time.Now()
	ts.now = func() time.Time { return now }

	first, err := ts.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, mock.GetAuthCount())

	// The stored expiry is expires_in minus the safety buffer. Just short
	// of that instant the token is still served from cache.
	now = now.Add(3600*time.Second - tokenExpiryBuffer - time.Second)
	assert.False(t, ts.Expired())

	cached, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	assert.Equal(t, 1, mock.GetAuthCount())

	// Past it, exactly one new exchange happens.
	now = now.Add(2 * time.Second)
	assert.True(t, ts.Expired())

	refreshed, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, refreshed)
	assert.Equal(t, 2, mock.GetAuthCount())
}

func TestTokenShortLifetimeForcesRefresh(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	mock.SetTokenExpiresIn(5) // below the expiry buffer

	ts := newTestTokenSource(t, mock.V2AuthURL())
	ctx := context.Background()

	_, err := ts.Token(ctx)
	require.NoError(t, err)
	_, err = ts.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, mock.GetAuthCount(), "a lifetime inside the buffer expires immediately")
}

func TestAuthenticateLegacyWireFormat(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()

	ts := newTestTokenSource(t, mock.LegacyAuthURL())
	require.Equal(t, ProtocolLegacy, ts.Protocol())

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	form := mock.LastAuthForm()
	assert.Equal(t, "test-client", form.Get("client_id"))
	assert.Equal(t, "test-secret", form.Get("client_secret"))
	assert.Equal(t, "https://api.sypht.com", form.Get("audience"))
	assert.Equal(t, "client_credentials", form.Get("grant_type"))
	assert.Empty(t, mock.LastAuthHeader.Get("Authorization"),
		"legacy exchanges carry the secret in the form, not a header")
}

func TestAuthenticateV2WireFormat(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()

	ts := newTestTokenSource(t, mock.V2AuthURL())

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	wantBasic := "Basic " + base64.StdEncoding.EncodeToString([]byte("test-client:test-secret"))
	assert.Equal(t, wantBasic, mock.LastAuthHeader.Get("Authorization"))

	form := mock.LastAuthForm()
	assert.Equal(t, "test-client", form.Get("client_id"))
	assert.Equal(t, "client_credentials", form.Get("grant_type"))
	assert.Empty(t, form.Get("client_secret"),
		"v2 exchanges must not place the secret in the body")
}

func TestTokenRejection(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		resp       testutil.MockResponse
		wantReason string
	}{
		{
			name:       "legacy error_description",
			path:       testutil.LegacyAuthPath,
			resp:       testutil.NewAuthFailureLegacy("invalid client credentials"),
			wantReason: "invalid client credentials",
		},
		{
			name:       "v2 error code",
			path:       testutil.V2AuthPath,
			resp:       testutil.NewAuthFailureV2("invalid_client"),
			wantReason: "invalid_client",
		},
		{
			name:       "unexpected status",
			path:       testutil.V2AuthPath,
			resp:       testutil.MockResponse{StatusCode: 500, Body: `{}`},
			wantReason: "unexpected status 500",
		},
		{
			name:       "missing token fields",
			path:       testutil.V2AuthPath,
			resp:       testutil.NewJSONResponse(`{"token_type": "Bearer"}`),
			wantReason: "response missing access_token or expires_in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockSypht()
			defer mock.Close()
			mock.SetResponse(tt.path, tt.resp)

			ts := newTestTokenSource(t, mock.URL()+tt.path)

			_, err := ts.Token(context.Background())
			require.Error(t, err)

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantReason, authErr.Reason)
			assert.NotContains(t, authErr.Error(), "test-secret")
		})
	}
}

func TestTokenMalformedResponse(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	mock.SetResponse(testutil.V2AuthPath, testutil.MockResponse{
		StatusCode: 200,
		Body:       "<html>not json</html>",
	})

	ts := newTestTokenSource(t, mock.V2AuthURL())

	_, err := ts.Token(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Reason, "decode response")
}

func TestTokenFailureIsRetriedOnNextCall(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	mock.SetResponse(testutil.V2AuthPath, testutil.NewAuthFailureV2("server_error"))

	ts := newTestTokenSource(t, mock.V2AuthURL())

	_, err := ts.Token(context.Background())
	require.Error(t, err)

	// A working endpoint on the next call yields a fresh token.
	mock.SetResponse(testutil.V2AuthPath, testutil.NewJSONResponse(
		`{"access_token": "recovered", "expires_in": 3600}`))

	token, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recovered", token)
}

func TestTokenContextCancellation(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()

	ts := newTestTokenSource(t, mock.V2AuthURL())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ts.Token(ctx)
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, errors.Is(err, context.Canceled))
}
