// Package client provides the Sypht API client: a resilient authenticated
// HTTP transport plus typed wrappers for the service's REST endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sypht-team/sypht-go-client/pkg/auth"
	"github.com/sypht-team/sypht-go-client/pkg/cache"
)

// DefaultBaseEndpoint is the production API endpoint.
const DefaultBaseEndpoint = "https://api.sypht.com"

// Environment variables consulted for endpoint defaults.
const (
	EnvBaseEndpoint = "SYPHT_API_BASE_ENDPOINT"
	EnvAuthEndpoint = "SYPHT_AUTH_ENDPOINT"
	EnvAudience     = "SYPHT_AUDIENCE"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sypht_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sypht_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sypht_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// Client is the Sypht API client. One instance owns its credentials and
// cached access token; it is not safe for unsynchronized use from multiple
// goroutines.
type Client struct {
	httpClient *http.Client
	tokens     *auth.TokenSource
	cache      *cache.Manager
	config     Config
	retry      RetryConfig
	logger     zerolog.Logger

	companyID string
}

// Config holds the client configuration. Zero values fall back to
// environment variables and library defaults at construction time.
type Config struct {
	// Credentials for the OAuth client-credentials grant. When zero,
	// SYPHT_API_KEY ("<client_id>:<client_secret>") is consulted.
	Credentials auth.Credentials

	// BaseEndpoint is the API endpoint. Default: SYPHT_API_BASE_ENDPOINT
	// or https://api.sypht.com.
	BaseEndpoint string

	// AuthEndpoint is the token endpoint. Default: SYPHT_AUTH_ENDPOINT or
	// the v2 endpoint. The endpoint's path shape selects the auth protocol.
	AuthEndpoint string

	// Audience for legacy token requests. Default: SYPHT_AUDIENCE or
	// BaseEndpoint.
	Audience string

	// UserAgent header sent with every request.
	UserAgent string

	// Redis enables the optional response cache for GET endpoints when
	// non-nil.
	Redis *redis.Client

	// CacheTTL bounds how long cached GET responses are served.
	CacheTTL time.Duration

	// Retry policy for GET requests. Mutating requests are never retried.
	MaxRetries     int
	InitialBackoff time.Duration

	// Timeout for individual HTTP calls.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration; credentials and
// endpoints resolve from the environment in New.
func DefaultConfig() Config {
	return Config{
		UserAgent:      "sypht-go-client/1.0",
		CacheTTL:       60 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		Timeout:        30 * time.Second,
	}
}

// New creates a Sypht client. Configuration problems (missing credentials,
// unrecognized auth endpoint) surface here; no network traffic happens
// until the first call, which authenticates lazily.
func New(cfg Config) (*Client, error) {
	creds := cfg.Credentials
	if creds == (auth.Credentials{}) {
		var err error
		creds, err = auth.CredentialsFromEnv()
		if err != nil {
			return nil, err
		}
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if cfg.BaseEndpoint == "" {
		cfg.BaseEndpoint = getEnv(EnvBaseEndpoint, DefaultBaseEndpoint)
	}
	if cfg.AuthEndpoint == "" {
		cfg.AuthEndpoint = getEnv(EnvAuthEndpoint, auth.DefaultAuthEndpoint)
	}
	if cfg.Audience == "" {
		cfg.Audience = getEnv(EnvAudience, cfg.BaseEndpoint)
	}
	if _, err := url.Parse(cfg.BaseEndpoint); err != nil {
		return nil, fmt.Errorf("invalid base endpoint %q: %w", cfg.BaseEndpoint, err)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	tokens, err := auth.NewTokenSource(creds, cfg.AuthEndpoint, cfg.Audience, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("component", "sypht-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			// A 3xx must surface literally as a request error; following
			// it would silently refetch from another target.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		tokens: tokens,
		cache:  cacheManager,
		config: cfg,
		retry: RetryConfig{
			MaxAttempts:       cfg.MaxRetries + 1,
			InitialBackoff:    cfg.InitialBackoff,
			BackoffMultiplier: 2.0,
		},
		logger: logger,
	}, nil
}

// TokenSource returns the underlying token source.
func (c *Client) TokenSource() *auth.TokenSource {
	return c.tokens
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// endpoint joins a path onto the configured base endpoint.
func (c *Client) endpoint(path string, query url.Values) string {
	u := strings.TrimRight(c.config.BaseEndpoint, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// requestOptions tunes one call through do.
type requestOptions struct {
	contentType string
	noCache     bool
}

// do executes one API call. GET requests go through the retry policy for
// transient failures; every other method is sent exactly once, since the
// client cannot decide whether repeating a mutation is safe. Each attempt
// first obtains a live bearer token, refreshing if the cached one expired.
// A non-2xx response becomes a *RequestError carrying status and body.
func (c *Client) do(ctx context.Context, method, rawurl string, body []byte, opts requestOptions) ([]byte, error) {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	endpoint := parsed.Path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	cacheable := method == http.MethodGet && c.cache != nil && !opts.noCache
	cacheKey := cache.Key{Endpoint: parsed.Path, Query: parsed.Query()}

	if cacheable {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().Str("endpoint", endpoint).Msg("Serving response from cache")
			return entry.Data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	var data []byte

	attempt := func() error {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassAuth)).Inc()
			return err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if opts.contentType != "" {
			req.Header.Set("Content-Type", opts.contentType)
		}
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return fmt.Errorf("http request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return fmt.Errorf("read response: %w", err)
		}

		requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			reqErr := &RequestError{StatusCode: resp.StatusCode, Body: string(raw)}
			errorsTotal.WithLabelValues(string(classifyError(reqErr))).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Msg("API request error")
			return reqErr
		}

		data = raw
		return nil
	}

	if method == http.MethodGet {
		err = retryWithBackoff(ctx, c.retry, attempt)
	} else {
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	if cacheable {
		entry := &cache.Entry{Data: data, StatusCode: http.StatusOK, CachedAt: time.Now()}
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		}
	}

	return data, nil
}

// decode unmarshals a 2xx response body into out. A non-JSON body is only
// acceptable when the caller asked for the raw text.
func decode(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok && !json.Valid(data) {
		*s = string(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get performs a GET request and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, c.endpoint(path, query), nil, requestOptions{})
	if err != nil {
		return err
	}
	return decode(data, out)
}

// getFresh is get without the response cache, for polling endpoints.
func (c *Client) getFresh(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, c.endpoint(path, query), nil, requestOptions{noCache: true})
	if err != nil {
		return err
	}
	return decode(data, out)
}

// getRaw performs a GET request and returns the body bytes unparsed.
func (c *Client) getRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.endpoint(path, query), nil, requestOptions{noCache: true})
}

// sendJSON marshals body and sends it with the given method, decoding the
// response into out. Used for all mutating JSON endpoints; never retried.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	data, err := c.do(ctx, method, c.endpoint(path, nil), payload, requestOptions{
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	return decode(data, out)
}

// postMultipart sends a multipart/form-data POST with one file part plus
// plain form fields, decoding the response into out.
func (c *Client) postMultipart(ctx context.Context, path, fileField, filename string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	wr := multipart.NewWriter(&buf)

	part, err := wr.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	for key, value := range fields {
		if err := wr.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, c.endpoint(path, nil), buf.Bytes(), requestOptions{
		contentType: wr.FormDataContentType(),
	})
	if err != nil {
		return err
	}
	return decode(data, out)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
