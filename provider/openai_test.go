package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(body)
}

func TestOpenAIProvider_Analyze(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletion(`{"score": 77, "label": "AI-generated", "reason": "Melted fingers."}`)))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	assert.Equal(t, "openai/gpt-4o-mini", p.Name())

	v, err := p.Analyze(context.Background(), AnalyzeRequest{Image: []byte("img"), MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, 77.0, v.Score)
	assert.Equal(t, "Melted fingers.", v.Reason)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	temperature, ok := got["temperature"].(float64)
	require.True(t, ok, "temperature must be sent even when zero")
	assert.Less(t, temperature, 1e-6)
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok, "JSON mode should be requested")
	assert.Equal(t, "json_object", format["type"])

	raw, _ := json.Marshal(got["messages"])
	assert.Contains(t, string(raw), "data:image/png;base64,aW1n")
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		format    bool
	}{
		{"rate limited", 429, `{"error": {"message": "slow down", "type": "rate_limit_error"}}`, true, false},
		{"server error", 500, `{"error": {"message": "oops", "type": "server_error"}}`, true, false},
		{"bad request", 400, `{"error": {"message": "bad image", "type": "invalid_request_error"}}`, false, false},
		{"empty content", 200, chatCompletion(""), true, false},
		{"prose answer", 200, chatCompletion("I think it's real."), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
			_, err := p.Analyze(context.Background(), AnalyzeRequest{Image: []byte("img"), MIMEType: "image/png"})
			require.Error(t, err)

			if tt.format {
				var ferr *detector.ResponseFormatError
				assert.True(t, errors.As(err, &ferr), "got %T: %v", err, err)
				return
			}
			var perr *detector.ProviderError
			require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
			assert.Equal(t, "openai/gpt-4o-mini", perr.Provider)
			assert.Equal(t, tt.retryable, perr.Retryable)
		})
	}
}

func TestOpenRouterProvider(t *testing.T) {
	var got map[string]any
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletion("```json\n{\"score\": 15}\n```")))
	}))
	defer server.Close()

	p := NewOpenRouterProvider(OpenAIConfig{APIKey: "or-test", Model: "vendor/vision", BaseURL: server.URL})
	assert.Equal(t, "openrouter/vendor/vision", p.Name())

	v, err := p.Analyze(context.Background(), AnalyzeRequest{Image: []byte("img"), MIMEType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, 15.0, v.Score)

	assert.Equal(t, detector.Repository, headers.Get("HTTP-Referer"))
	assert.Equal(t, detector.Name, headers.Get("X-Title"))
	_, hasFormat := got["response_format"]
	assert.False(t, hasFormat, "JSON mode should be off for OpenRouter")
	_, hasTemperature := got["temperature"]
	assert.True(t, hasTemperature)
}
