package provider

import (
	"context"
	"sync"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
)

// MockProvider is a scripted provider for tests and offline runs.
type MockProvider struct {
	Model    string
	Response string // Raw text fed to ParseVerdict
	Err      error  // Returned instead of a verdict when set

	mu          sync.Mutex
	callCount   int
	lastRequest *AnalyzeRequest
}

// NewMockProvider creates a mock provider that always answers with a
// confident AI-generated verdict.
func NewMockProvider(model string) *MockProvider {
	if model == "" {
		model = "mock"
	}
	return &MockProvider{
		Model:    model,
		Response: `{"score": 82, "label": "AI-generated", "reason": "Mock provider verdict."}`,
	}
}

// Name returns "mock/<model>".
func (m *MockProvider) Name() string {
	return KindMock + "/" + m.Model
}

// Analyze returns the scripted answer.
func (m *MockProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*detector.Verdict, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return detector.ParseVerdict(m.Response)
}

// CallCount returns how many times Analyze was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *AnalyzeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset clears the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

var _ Provider = (*MockProvider)(nil)
