package detector

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Provider is the interface for AI detection backends.
type Provider interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*Verdict, error)
	// Name identifies the backend as "provider/model".
	Name() string
}

// ResultCache is the interface for result caching.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// Analyzer runs images through an ordered provider chain.
type Analyzer struct {
	providers       []Provider
	chain           string
	cache           ResultCache
	logger          *zap.Logger
	maxBytes        int64
	maxDimension    int
	providerTimeout time.Duration
	heuristic       bool
}

// AnalyzerOption is a functional option for configuring the Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCache sets the result cache.
func WithCache(cache ResultCache) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxBytes sets the upload size limit.
func WithMaxBytes(n int64) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxBytes = n
	}
}

// WithMaxDimension sets the longest side sent to providers. Zero disables downscaling.
func WithMaxDimension(px int) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxDimension = px
	}
}

// WithProviderTimeout bounds each provider attempt.
func WithProviderTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.providerTimeout = d
	}
}

// WithHeuristic enables or disables the deterministic fallback.
func WithHeuristic(enabled bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.heuristic = enabled
	}
}

// NewAnalyzer creates an Analyzer that tries providers in order.
func NewAnalyzer(providers []Provider, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		providers:       providers,
		chain:           ChainFingerprint(providers),
		logger:          zap.NewNop(),
		maxBytes:        DefaultMaxBytes,
		maxDimension:    DefaultMaxDimension,
		providerTimeout: DefaultProviderTimeout,
		heuristic:       true,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze validates an image and scores it with the first provider that
// answers. When the chain is empty or exhausted the heuristic answers
// instead, unless it has been disabled.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, declaredType string) (*Result, error) {
	info, err := ValidateImage(data, declaredType, a.maxBytes)
	if err != nil {
		return nil, err
	}

	hash := HashImage(data)
	key := CacheKey(hash, a.chain)

	if cached, ok := a.lookup(ctx, key); ok {
		return cached, nil
	}

	prepared, mimeType, err := PrepareImage(data, info, a.maxDimension)
	if err != nil {
		return nil, err
	}

	req := AnalyzeRequest{Image: prepared, MIMEType: mimeType}

	var attempts []Attempt
	var lastErr error
	for _, p := range a.providers {
		verdict, err := a.try(ctx, p, req, &attempts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		result := newResult(*verdict, p.Name(), hash)
		result.Attempts = attempts
		a.store(ctx, key, result)
		return result, nil
	}

	if !a.heuristic {
		if lastErr == nil {
			return nil, &DetectionError{Message: "no providers configured"}
		}
		return nil, &DetectionError{Message: "all providers failed", Cause: lastErr}
	}

	if len(a.providers) > 0 {
		a.logger.Warn("all providers failed, using heuristic",
			zap.String("hash", hash),
			zap.Int("attempts", len(attempts)),
			zap.Error(lastErr))
	}

	result := newResult(Heuristic(data), HeuristicSource, hash)
	result.Fallback = true
	result.Attempts = attempts
	return result, nil
}

func (a *Analyzer) try(ctx context.Context, p Provider, req AnalyzeRequest, attempts *[]Attempt) (*Verdict, error) {
	callCtx := ctx
	if a.providerTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.providerTimeout)
		defer cancel()
	}

	start := time.Now()
	verdict, err := p.Analyze(callCtx, req)
	elapsed := time.Since(start)

	if err == nil && verdict == nil {
		err = &ProviderError{Provider: p.Name(), Message: "empty verdict"}
	}

	attempt := Attempt{Source: p.Name(), Duration: elapsed}
	if err != nil {
		attempt.Error = err.Error()
	}
	*attempts = append(*attempts, attempt)

	a.logger.Debug("provider attempt",
		zap.String("source", p.Name()),
		zap.Duration("duration", elapsed),
		zap.Error(err))

	return verdict, err
}

func (a *Analyzer) lookup(ctx context.Context, key string) (*Result, bool) {
	if a.cache == nil {
		return nil, false
	}
	raw, ok := a.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		a.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	result.Cached = true
	result.Attempts = nil
	return &result, true
}

func (a *Analyzer) store(ctx context.Context, key string, result *Result) {
	if a.cache == nil {
		return
	}
	stored := *result
	stored.Attempts = nil
	data, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, string(data)); err != nil {
		a.logger.Warn("cache write failed", zap.String("key", key),
			zap.Error(&CacheError{Message: "set", Cause: err}))
	}
}

func newResult(v Verdict, source, hash string) *Result {
	score, label, reason := Normalize(v)
	return &Result{
		Score:  score,
		Label:  label,
		Reason: reason,
		Source: source,
		Hash:   hash,
	}
}

// Providers returns the names of the configured chain, in order.
func (a *Analyzer) Providers() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

// HeuristicEnabled reports whether the deterministic fallback is on.
func (a *Analyzer) HeuristicEnabled() bool {
	return a.heuristic
}

// ProviderTimeout returns the bound on each provider attempt. Zero means unbounded.
func (a *Analyzer) ProviderTimeout() time.Duration {
	return a.providerTimeout
}

// MaxBytes returns the upload size limit.
func (a *Analyzer) MaxBytes() int64 {
	return a.maxBytes
}

// IsValidationError reports whether err rejects the upload itself.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
