package provider

import (
	"errors"
	"fmt"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
)

// ChainOptions controls the decorators applied to every chain entry.
type ChainOptions struct {
	Retry     *detector.RetryConfig     // nil disables retries
	RateLimit *detector.RateLimitConfig // nil disables rate limiting
}

// Skipped describes a chain entry that was not built.
type Skipped struct {
	Entry  ChainEntry
	Reason string
}

// BuildChain builds providers for entries in order. Entries without
// credentials are skipped and reported, not treated as errors.
func BuildChain(entries []ChainEntry, keys Keys, opts ChainOptions) ([]Provider, []Skipped, error) {
	var chain []Provider
	var skipped []Skipped

	for _, entry := range entries {
		p, err := Build(entry, keys)
		if errors.Is(err, ErrNoCredentials) {
			skipped = append(skipped, Skipped{Entry: entry, Reason: err.Error()})
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("building %s: %w", entry, err)
		}

		if opts.RateLimit != nil && opts.RateLimit.RequestsPerMinute > 0 {
			p = detector.NewRateLimitedProvider(p, *opts.RateLimit)
		}
		if opts.Retry != nil && opts.Retry.MaxRetries > 0 {
			p = detector.NewRetryableProvider(p, *opts.Retry)
		}
		chain = append(chain, p)
	}

	return chain, skipped, nil
}
