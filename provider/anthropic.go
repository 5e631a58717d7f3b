package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
	"github.com/charmbracelet/anthropic-sdk-go"
	"github.com/charmbracelet/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider using Anthropic's Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey     string       // Anthropic API key
	Model      string       // Model to use (default: "claude-3-5-haiku-latest")
	BaseURL    string       // Custom base URL (optional)
	HTTPClient *http.Client // Custom HTTP client (optional)
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHeader("User-Agent", detector.UserAgent()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Name returns "anthropic/<model>".
func (p *AnthropicProvider) Name() string {
	return KindAnthropic + "/" + p.model
}

// Analyze asks Claude for a verdict on one image.
func (p *AnthropicProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*detector.Verdict, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxResponseTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: buildSystemPrompt()}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(req.MIMEType, base64.StdEncoding.EncodeToString(req.Image)),
				anthropic.NewTextBlock(buildUserPrompt()),
			),
		},
	})
	if err != nil {
		return nil, &detector.ProviderError{
			Provider:  p.Name(),
			Message:   "messages request failed",
			Cause:     err,
			Retryable: isRetryableAnthropicError(err),
		}
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &detector.ProviderError{
			Provider:  p.Name(),
			Message:   "empty response",
			Retryable: true,
		}
	}

	return detector.ParseVerdict(text.String())
}

func isRetryableAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return retryableStatus(apiErr.StatusCode)
	}
	return isRetryableError(err)
}

var _ Provider = (*AnthropicProvider)(nil)
