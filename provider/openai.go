package provider

import (
	"context"
	"errors"
	"math"
	"net/http"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
	"github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider implements Provider using an OpenAI-compatible chat API.
type OpenAIProvider struct {
	client      *openai.Client
	kind        string
	model       string
	temperature float32
	jsonMode    bool
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string       // API key
	Model       string       // Model to use (default: "gpt-4o-mini")
	Temperature float32      // Temperature for generation (default: 0)
	BaseURL     string       // Custom base URL (optional)
	HTTPClient  *http.Client // Custom HTTP client (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		kind:        KindOpenAI,
		model:       model,
		temperature: cfg.Temperature,
		jsonMode:    true,
	}
}

// NewOpenRouterProvider creates an OpenAI-compatible provider pointed at
// OpenRouter. JSON mode is left off because many routed vision models reject it.
func NewOpenRouterProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	base := http.DefaultClient
	if cfg.HTTPClient != nil {
		base = cfg.HTTPClient
	}
	cfg.HTTPClient = &http.Client{
		Timeout: base.Timeout,
		Transport: &headerTransport{
			base: base.Transport,
			headers: map[string]string{
				"HTTP-Referer": detector.Repository,
				"X-Title":      detector.Name,
			},
		},
	}

	p := NewOpenAIProvider(cfg)
	p.kind = KindOpenRouter
	p.jsonMode = false
	return p
}

// Name returns "openai/<model>" or "openrouter/<model>".
func (p *OpenAIProvider) Name() string {
	return p.kind + "/" + p.model
}

// Analyze asks the model for a verdict on one image.
func (p *OpenAIProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*detector.Verdict, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt()},
			p.buildUserMessage(req),
		},
		Temperature: p.temperature,
		MaxTokens:   maxResponseTokens,
	}
	// The client drops a zero temperature (omitempty), leaving the API default of 1.
	if chatReq.Temperature == 0 {
		chatReq.Temperature = math.SmallestNonzeroFloat32
	}
	if p.jsonMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, &detector.ProviderError{
			Provider:  p.Name(),
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: isRetryableOpenAIError(err),
		}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &detector.ProviderError{
			Provider:  p.Name(),
			Message:   "empty response",
			Retryable: true,
		}
	}

	return detector.ParseVerdict(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildUserMessage(req AnalyzeRequest) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: buildUserPrompt(),
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL(req),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	}
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return isRetryableError(err)
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

var _ Provider = (*OpenAIProvider)(nil)
