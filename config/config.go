// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"

	"github.com/Aryangaikwadsql/ai-image-detector/provider"
)

// Config holds every runtime setting. Field tags name the environment
// variable each value comes from.
type Config struct {
	Addr            string        `mapstructure:"AIDETECT_ADDR"`
	Chain           string        `mapstructure:"AIDETECT_CHAIN"`
	MaxUploadMB     int           `mapstructure:"AIDETECT_MAX_UPLOAD_MB"`
	MaxDimension    int           `mapstructure:"AIDETECT_MAX_DIMENSION"`
	ProviderTimeout time.Duration `mapstructure:"AIDETECT_PROVIDER_TIMEOUT"`
	RPM             int           `mapstructure:"AIDETECT_RPM"`
	Retries         int           `mapstructure:"AIDETECT_RETRIES"`
	CacheTTL        int           `mapstructure:"AIDETECT_CACHE_TTL"`
	CacheFile       string        `mapstructure:"AIDETECT_CACHE_FILE"`
	Heuristic       bool          `mapstructure:"AIDETECT_HEURISTIC"`
	CORSOrigins     []string      `mapstructure:"AIDETECT_CORS_ORIGINS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`

	GeminiAPIKey     string `mapstructure:"GEMINI_API_KEY"`
	GoogleAPIKey     string `mapstructure:"GOOGLE_API_KEY"`
	OpenAIAPIKey     string `mapstructure:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `mapstructure:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `mapstructure:"OPENROUTER_API_KEY"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		MaxUploadMB:     10,
		MaxDimension:    1536,
		ProviderTimeout: 30 * time.Second,
		Retries:         1,
		CacheTTL:        86400,
		Heuristic:       true,
		CORSOrigins:     []string{"*"},
	}
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Environ())
}

// FromEnv decodes KEY=VALUE pairs over Default().
func FromEnv(environ []string) (Config, error) {
	values := make(map[string]any)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		values[k] = v
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, fmt.Errorf("decoding environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges and the chain syntax.
func (c Config) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("AIDETECT_MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("AIDETECT_MAX_DIMENSION must not be negative, got %d", c.MaxDimension)
	}
	if c.Retries < 0 {
		return fmt.Errorf("AIDETECT_RETRIES must not be negative, got %d", c.Retries)
	}
	if c.RPM < 0 {
		return fmt.Errorf("AIDETECT_RPM must not be negative, got %d", c.RPM)
	}
	if _, err := provider.ParseChain(c.Chain); err != nil {
		return fmt.Errorf("AIDETECT_CHAIN: %w", err)
	}
	return nil
}

// MaxBytes returns the upload limit in bytes.
func (c Config) MaxBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Keys collects provider credentials. GEMINI_API_KEY takes precedence over
// GOOGLE_API_KEY.
func (c Config) Keys() provider.Keys {
	gemini := c.GeminiAPIKey
	if gemini == "" {
		gemini = c.GoogleAPIKey
	}
	return provider.Keys{
		Gemini:     gemini,
		OpenAI:     c.OpenAIAPIKey,
		Anthropic:  c.AnthropicAPIKey,
		OpenRouter: c.OpenRouterAPIKey,
	}
}
