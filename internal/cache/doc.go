// Package cache memoizes query results keyed by a hash of the normalized
// request.
//
// Three implementations share the Cache interface: an in-process LRU backed
// by hashicorp/golang-lru, a Redis store for sharing results between
// replicas, and a no-op used when caching is disabled. Callers treat any
// cache error as a miss and recompute.
package cache
