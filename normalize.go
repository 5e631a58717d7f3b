package detector

import (
	"math"
	"strings"
	"unicode/utf8"
)

// MaxReasonLength is the longest reason, in runes, kept in a Result.
const MaxReasonLength = 280

var defaultReasons = map[Label]string{
	LabelAI:        "The image shows patterns typical of AI image generators.",
	LabelUncertain: "The image shows no strong indicators either way.",
	LabelHuman:     "The image looks consistent with a real camera capture.",
}

// Normalize clamps and rounds a verdict's score, derives its label and
// tidies its reason. The provider-reported label is ignored.
func Normalize(v Verdict) (int, Label, string) {
	score := NormalizeScore(v.Score)
	label := LabelFor(score)
	return score, label, NormalizeReason(v.Reason, label)
}

// NormalizeScore rounds half away from zero and clamps to [0,100].
// NaN maps to 50.
func NormalizeScore(score float64) int {
	if math.IsNaN(score) {
		return 50
	}
	rounded := math.Round(score)
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return int(rounded)
}

// LabelFor maps a normalized score to a Label.
func LabelFor(score int) Label {
	switch {
	case score >= AIThreshold:
		return LabelAI
	case score <= HumanThreshold:
		return LabelHuman
	default:
		return LabelUncertain
	}
}

// NormalizeReason collapses whitespace, truncates long text and substitutes
// a default sentence for empty reasons.
func NormalizeReason(reason string, label Label) string {
	reason = strings.Join(strings.Fields(reason), " ")
	if reason == "" {
		return defaultReasons[label]
	}
	if utf8.RuneCountInString(reason) <= MaxReasonLength {
		return reason
	}
	runes := []rune(reason)
	return strings.TrimSpace(string(runes[:MaxReasonLength-1])) + "…"
}
