package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
	"github.com/Aryangaikwadsql/ai-image-detector/cache"
	"github.com/Aryangaikwadsql/ai-image-detector/config"
	"github.com/Aryangaikwadsql/ai-image-detector/provider"
	"github.com/Aryangaikwadsql/ai-image-detector/server"
)

// memoryCacheEntries bounds the in-memory result cache.
const memoryCacheEntries = 10000

func runServe(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	envFile := fs.String("env-file", ".env", "Optional .env file to load")
	addr := fs.String("addr", "", "Listen address (default: AIDETECT_ADDR or :8080)")
	chain := fs.String("chain", "", "Provider chain, e.g. gemini:gemini-2.0-flash,openai:gpt-4o-mini")
	redisURL := fs.String("redis-url", "", "Redis URL for the result cache (default: REDIS_URL)")
	cacheFile := fs.String("cache-file", "", "Snapshot file for the in-memory cache")
	noHeuristic := fs.Bool("no-heuristic", false, "Fail instead of using the heuristic fallback")
	verbose := fs.BoolP("verbose", "V", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *chain != "" {
		cfg.Chain = *chain
	}
	if *redisURL != "" {
		cfg.RedisURL = *redisURL
	}
	if *cacheFile != "" {
		cfg.CacheFile = *cacheFile
	}
	if *noHeuristic {
		cfg.Heuristic = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := zapcore.InfoLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	logger := newLogger(stderr, level)
	defer func() { _ = logger.Sync() }()

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		return err
	}

	resultCache, persist, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer persist()

	analyzer := detector.NewAnalyzer(providers,
		detector.WithCache(resultCache),
		detector.WithLogger(logger),
		detector.WithMaxBytes(cfg.MaxBytes()),
		detector.WithMaxDimension(cfg.MaxDimension),
		detector.WithProviderTimeout(cfg.ProviderTimeout),
		detector.WithHeuristic(cfg.Heuristic),
	)

	srv := server.New(analyzer, logger, server.Config{
		Addr:           cfg.Addr,
		AllowedOrigins: cfg.CORSOrigins,
	})

	fmt.Fprintf(stdout, "%s %s listening on %s\n", detector.Name, detector.FullVersion(), cfg.Addr)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildProviders turns the configured chain into decorated providers.
func buildProviders(cfg config.Config, logger *zap.Logger) ([]detector.Provider, error) {
	entries, err := provider.ParseChain(cfg.Chain)
	if err != nil {
		return nil, err
	}

	opts := provider.ChainOptions{}
	if cfg.Retries > 0 {
		retry := detector.DefaultRetryConfig()
		retry.MaxRetries = cfg.Retries
		opts.Retry = &retry
	}
	if cfg.RPM > 0 {
		opts.RateLimit = &detector.RateLimitConfig{RequestsPerMinute: cfg.RPM}
	}

	providers, skipped, err := provider.BuildChain(entries, cfg.Keys(), opts)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		logger.Info("skipping provider", zap.String("entry", s.Entry.String()), zap.String("reason", s.Reason))
	}
	if len(providers) == 0 {
		logger.Warn("no providers configured; every verdict will come from the heuristic")
	}
	return providers, nil
}

// openCache returns Redis when configured, otherwise a bounded in-memory
// cache optionally restored from a snapshot. The returned func persists the
// snapshot and releases resources.
func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (detector.ResultCache, func(), error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, TTL: cfg.CacheTTL})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("using redis result cache")
		return rc, func() { _ = rc.Close() }, nil
	}

	mc := cache.NewInMemoryCache(cfg.CacheTTL).WithMaxEntries(memoryCacheEntries)
	if cfg.CacheFile == "" {
		return mc, func() {}, nil
	}

	res, err := cache.NewImporter(mc).ImportFromFile(ctx, cfg.CacheFile)
	if err != nil {
		logger.Warn("cache snapshot not loaded", zap.String("file", cfg.CacheFile), zap.Error(err))
	} else {
		logger.Info("cache snapshot loaded", zap.Int("entries", res.Imported), zap.Int("failed", res.Failed))
	}

	persist := func() {
		meta := map[string]string{"version": detector.FullVersion()}
		if err := cache.NewExporter(mc).ExportToFile(cfg.CacheFile, meta); err != nil {
			logger.Error("cache snapshot not saved", zap.String("file", cfg.CacheFile), zap.Error(err))
			return
		}
		logger.Info("cache snapshot saved", zap.String("file", cfg.CacheFile), zap.Int("entries", mc.Len()))
	}
	return mc, persist, nil
}
