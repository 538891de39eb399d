// Package cache provides an optional Redis-backed response cache for
// idempotent GET endpoints.
//
// The Sypht API sends no cache-control headers, so entries live for a fixed
// TTL configured on the client rather than a server-driven one. The cache
// sits in front of the retrying transport: a hit skips the network entirely,
// a miss stores the successful response body after the call. Endpoints that
// poll for state (results retrieval) bypass the cache.
//
// Cache keys are deterministic strings built from the endpoint path and its
// query parameters:
//
//	sypht:app/docs/4a9f.../tags
//	sypht:app/annotations:docId=4a9f...:offset=0
//
// The cache is disabled entirely when the client is built without a Redis
// connection; nothing else in the client depends on Redis being present.
package cache
