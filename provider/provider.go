// Package provider defines the AI provider implementations used by the
// detection chain.
package provider

import (
	"errors"
	"fmt"
	"strings"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
)

// Provider is an alias to the main package interface for convenience.
type Provider = detector.Provider

// AnalyzeRequest is an alias to the main package type.
type AnalyzeRequest = detector.AnalyzeRequest

// Provider kinds accepted in a chain entry.
const (
	KindGemini     = "gemini"
	KindOpenAI     = "openai"
	KindAnthropic  = "anthropic"
	KindOpenRouter = "openrouter"
	KindMock       = "mock"
)

// ChainEntry is one "kind:model" item of a configured chain.
type ChainEntry struct {
	Kind  string
	Model string
}

func (e ChainEntry) String() string {
	return e.Kind + ":" + e.Model
}

// DefaultChain is tried when no chain is configured.
var DefaultChain = []ChainEntry{
	{Kind: KindGemini, Model: "gemini-2.0-flash"},
	{Kind: KindGemini, Model: "gemini-1.5-flash"},
	{Kind: KindOpenAI, Model: "gpt-4o-mini"},
	{Kind: KindAnthropic, Model: "claude-3-5-haiku-latest"},
	{Kind: KindOpenRouter, Model: "meta-llama/llama-3.2-11b-vision-instruct"},
}

// ParseChain parses a comma-separated list of "kind:model" entries.
// An empty string yields DefaultChain.
func ParseChain(s string) ([]ChainEntry, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultChain, nil
	}

	var entries []ChainEntry
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		kind, model, ok := strings.Cut(raw, ":")
		kind = strings.ToLower(strings.TrimSpace(kind))
		model = strings.TrimSpace(model)
		if !ok || model == "" {
			return nil, fmt.Errorf("chain entry %q: want kind:model", raw)
		}
		switch kind {
		case KindGemini, KindOpenAI, KindAnthropic, KindOpenRouter, KindMock:
		default:
			return nil, fmt.Errorf("chain entry %q: unknown provider %q", raw, kind)
		}
		entries = append(entries, ChainEntry{Kind: kind, Model: model})
	}
	return entries, nil
}

// Keys holds the API credentials for every provider kind.
type Keys struct {
	Gemini     string
	OpenAI     string
	Anthropic  string
	OpenRouter string
}

// ErrNoCredentials is returned by Build for entries whose provider has no API key.
var ErrNoCredentials = errors.New("no API key configured")

// Build creates the provider for a chain entry.
func Build(entry ChainEntry, keys Keys) (Provider, error) {
	switch entry.Kind {
	case KindGemini:
		if keys.Gemini == "" {
			return nil, ErrNoCredentials
		}
		return NewGeminiProvider(GeminiConfig{APIKey: keys.Gemini, Model: entry.Model})
	case KindOpenAI:
		if keys.OpenAI == "" {
			return nil, ErrNoCredentials
		}
		return NewOpenAIProvider(OpenAIConfig{APIKey: keys.OpenAI, Model: entry.Model}), nil
	case KindOpenRouter:
		if keys.OpenRouter == "" {
			return nil, ErrNoCredentials
		}
		return NewOpenRouterProvider(OpenAIConfig{APIKey: keys.OpenRouter, Model: entry.Model}), nil
	case KindAnthropic:
		if keys.Anthropic == "" {
			return nil, ErrNoCredentials
		}
		return NewAnthropicProvider(AnthropicConfig{APIKey: keys.Anthropic, Model: entry.Model}), nil
	case KindMock:
		return NewMockProvider(entry.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", entry.Kind)
	}
}
