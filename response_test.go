package detector

import (
	"errors"
	"math"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		score  float64
		label  string
		reason string
	}{
		{
			name:   "plain object",
			input:  `{"score": 87, "label": "AI-generated", "reason": "Waxy skin."}`,
			score:  87,
			label:  "AI-generated",
			reason: "Waxy skin.",
		},
		{
			name:   "markdown fence",
			input:  "```json\n{\"score\": 12, \"reason\": \"Sensor noise.\"}\n```",
			score:  12,
			reason: "Sensor noise.",
		},
		{
			name:  "bare fence",
			input: "```\n{\"score\": 40}\n```",
			score: 40,
		},
		{
			name:   "surrounding prose",
			input:  `Sure! Here is my analysis: {"score": 55, "reason": "Hard to say."} Hope this helps.`,
			score:  55,
			reason: "Hard to say.",
		},
		{
			name:  "numeric string with percent",
			input: `{"score": "73%"}`,
			score: 73,
		},
		{
			name:  "probability-style score",
			input: `{"score": 0.91}`,
			score: 91,
		},
		{
			name:   "probability field",
			input:  `{"probability": 1, "reason": "Obvious render."}`,
			score:  100,
			reason: "Obvious render.",
		},
		{
			name:  "score of one stays a percentage",
			input: `{"score": 1}`,
			score: 1,
		},
		{
			name:   "trailing comma repaired",
			input:  `{"score": 64, "reason": "Odd hands.",}`,
			score:  64,
			reason: "Odd hands.",
		},
		{
			name:   "unterminated object repaired",
			input:  `{"score": 30, "reason": "Looks like a phone photo"`,
			score:  30,
			reason: "Looks like a phone photo",
		},
		{
			name:  "out of range kept for normalization",
			input: `{"score": 140}`,
			score: 140,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.input)
			if err != nil {
				t.Fatalf("ParseVerdict failed: %v", err)
			}
			if math.Abs(v.Score-tt.score) > 1e-9 {
				t.Errorf("Score = %v, want %v", v.Score, tt.score)
			}
			if v.Label != tt.label {
				t.Errorf("Label = %q, want %q", v.Label, tt.label)
			}
			if v.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.reason)
			}
		})
	}
}

func TestParseVerdict_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"missing score", `{"reason": "no score here"}`},
		{"non-numeric score", `{"score": "very likely"}`},
		{"score wrong type", `{"score": true}`},
		{"array", `[1, 2, 3]`},
		{"reason wrong type", `{"score": 10, "reason": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVerdict(tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			var ferr *ResponseFormatError
			if !errors.As(err, &ferr) {
				t.Errorf("expected ResponseFormatError, got %T: %v", err, err)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```{\"a\":1}```", `{"a":1}`},
		{"  ```JSON\n{}\n```  ", `{}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
