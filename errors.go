package detector

import "fmt"

// DetectionError is the base error type for analysis failures.
type DetectionError struct {
	Message string
	Cause   error
}

func (e *DetectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Provider  string
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	name := "provider"
	if e.Provider != "" {
		name = e.Provider
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", name, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// Validation error codes.
const (
	CodeEmpty       = "empty"
	CodeTooLarge    = "too_large"
	CodeUnsupported = "unsupported_type"
	CodeCorrupt     = "corrupt"
)

// ValidationError indicates an upload that cannot be analyzed.
type ValidationError struct {
	Code    string // One of the Code* constants
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid image (%s): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid image (%s): %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ResponseFormatError indicates a provider answer that could not be turned into a Verdict.
type ResponseFormatError struct {
	Message string
	Raw     string // The offending response text
	Cause   error
}

func (e *ResponseFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed provider response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed provider response: %s", e.Message)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Cause
}
