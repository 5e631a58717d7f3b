package provider

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider(t *testing.T) {
	m := NewMockProvider("")
	if m.Name() != "mock/mock" {
		t.Errorf("Name() = %q", m.Name())
	}

	req := AnalyzeRequest{Image: []byte{1, 2, 3}, MIMEType: "image/png"}
	v, err := m.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if v.Score != 82 {
		t.Errorf("Score = %v, want 82", v.Score)
	}
	if m.CallCount() != 1 {
		t.Errorf("CallCount() = %d", m.CallCount())
	}
	if last := m.LastRequest(); last == nil || last.MIMEType != "image/png" {
		t.Errorf("LastRequest() = %+v", last)
	}

	m.Reset()
	if m.CallCount() != 0 || m.LastRequest() != nil {
		t.Error("Reset should clear state")
	}
}

func TestMockProvider_ScriptedResponses(t *testing.T) {
	m := NewMockProvider("x")

	m.Response = "```json\n{\"score\": 0.25}\n```"
	v, err := m.Analyze(context.Background(), AnalyzeRequest{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if v.Score != 25 {
		t.Errorf("Score = %v, want 25", v.Score)
	}

	m.Response = "I cannot help with that."
	if _, err := m.Analyze(context.Background(), AnalyzeRequest{}); err == nil {
		t.Error("expected a parse error")
	}

	boom := errors.New("boom")
	m.Err = boom
	if _, err := m.Analyze(context.Background(), AnalyzeRequest{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMockProvider("x").Analyze(ctx, AnalyzeRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
