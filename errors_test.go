package detector

import (
	"errors"
	"testing"
)

func TestDetectionError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &DetectionError{Message: "all providers failed", Cause: cause}

	if err.Error() != "all providers failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	err2 := &DetectionError{Message: "no providers configured"}
	if err2.Error() != "no providers configured" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Message: "rate limited", Retryable: true}

	if err.Error() != "provider error: rate limited" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !err.Retryable {
		t.Error("error should be retryable")
	}

	named := &ProviderError{Provider: "gemini/gemini-2.0-flash", Message: "empty response"}
	if named.Error() != "gemini/gemini-2.0-flash error: empty response" {
		t.Errorf("unexpected error message: %s", named.Error())
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}

	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Code: CodeUnsupported, Message: "content type text/plain is not supported"}

	expected := "invalid image (unsupported_type): content type text/plain is not supported"
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s, want %s", err.Error(), expected)
	}

	wrapped := &DetectionError{Message: "upload", Cause: err}
	if !IsValidationError(wrapped) {
		t.Error("IsValidationError should see through wrapping")
	}
	if IsValidationError(errors.New("other")) {
		t.Error("IsValidationError should be false for unrelated errors")
	}
}

func TestResponseFormatError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &ResponseFormatError{Message: "json repair failed", Raw: "{", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("ResponseFormatError should unwrap to its cause")
	}
	if IsRetryable(err) {
		t.Error("format errors should not be retryable")
	}
}
