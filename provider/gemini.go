package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider using Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey     string       // Gemini API key
	Model      string       // Model to use (default: "gemini-2.0-flash")
	BaseURL    string       // Custom base URL (optional)
	HTTPClient *http.Client // Custom HTTP client (optional)
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name returns "gemini/<model>".
func (p *GeminiProvider) Name() string {
	return KindGemini + "/" + p.model
}

// Analyze asks Gemini for a verdict on one image.
func (p *GeminiProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*detector.Verdict, error) {
	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: buildUserPrompt()},
				{InlineData: &genai.Blob{Data: req.Image, MIMEType: req.MIMEType}},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, p.generateConfig())
	if err != nil {
		return nil, &detector.ProviderError{
			Provider:  p.Name(),
			Message:   "generate content failed",
			Cause:     err,
			Retryable: isRetryableGeminiError(err),
		}
	}

	text := resp.Text()
	if text == "" {
		return nil, &detector.ProviderError{
			Provider:  p.Name(),
			Message:   "empty response",
			Retryable: true,
		}
	}

	return detector.ParseVerdict(text)
}

func (p *GeminiProvider) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		MaxOutputTokens:   maxResponseTokens,
		ResponseMIMEType:  "application/json",
	}
}

func isRetryableGeminiError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return retryableStatus(apiErr.Code)
	}
	return isRetryableError(err)
}

var _ Provider = (*GeminiProvider)(nil)
