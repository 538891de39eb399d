// Package metrics provides the centralized Prometheus metrics registry for
// the Sypht client. All metrics are defined in their respective packages
// (auth, client, cache, pagination) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Sypht client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Auth Metrics (pkg/auth):
//   - sypht_auth_refreshes_total{outcome} (Counter): Token refresh attempts by outcome (success, failure)
//
// Request Metrics (pkg/client):
//   - sypht_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - sypht_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - sypht_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, auth)
//
// Retry Metrics (pkg/client):
//   - sypht_retries_total{error_class} (Counter): Retry attempts by error class
//   - sypht_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - sypht_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - sypht_pagination_pages_total{operation} (Counter): Pages fetched by operation
//   - sypht_pagination_limit_exceeded_total{operation} (Counter): Runs aborted by the record limit
//
// Cache Metrics (pkg/cache):
//   - sypht_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - sypht_cache_misses_total (Counter): Cache misses
//   - sypht_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(sypht_cache_hits_total[5m])) /
//   (sum(rate(sypht_cache_hits_total[5m])) + sum(rate(sypht_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(sypht_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(sypht_request_duration_seconds_bucket[5m]))
//
//   # Retry Exhaustion Rate
//   rate(sypht_retry_exhausted_total[5m])
