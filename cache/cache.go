// Package cache provides analysis result caching implementations.
package cache

import "context"

// ResultCache is the interface for result caching. Values are JSON-encoded
// detector.Result documents keyed by image hash and chain fingerprint.
type ResultCache interface {
	// Get retrieves a cached result. Returns empty string and false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a result in the cache.
	Set(ctx context.Context, key string, value string) error
}
