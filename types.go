package detector

import "time"

// Label is the three-way verdict derived from a score.
type Label string

const (
	// LabelAI marks images that are most likely AI-generated.
	LabelAI Label = "AI-generated"
	// LabelUncertain marks images the evidence does not settle either way.
	LabelUncertain Label = "Uncertain"
	// LabelHuman marks images that are most likely camera-captured.
	LabelHuman Label = "Human-captured"
)

// Score thresholds used to derive a Label.
const (
	AIThreshold    = 65 // scores at or above are LabelAI
	HumanThreshold = 35 // scores at or below are LabelHuman
)

// HeuristicSource is the Result.Source of verdicts produced without a provider.
const HeuristicSource = "heuristic"

// AnalyzeRequest is what a provider receives for a single image.
type AnalyzeRequest struct {
	Image    []byte // Image bytes, possibly downscaled
	MIMEType string // Sniffed content type of Image
}

// Verdict is a raw provider answer before normalization.
type Verdict struct {
	Score  float64 // 0-100, likelihood of AI generation
	Label  string  // Label as reported by the provider (informational only)
	Reason string  // Free-form justification
}

// Attempt records one provider call made while analyzing an image.
type Attempt struct {
	Source   string        `json:"source"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result is the normalized outcome of an analysis.
type Result struct {
	Score    int       `json:"score"`
	Label    Label     `json:"label"`
	Reason   string    `json:"reason"`
	Source   string    `json:"source"`
	Fallback bool      `json:"fallback"`
	Cached   bool      `json:"cached"`
	Hash     string    `json:"hash"`
	Attempts []Attempt `json:"attempts,omitempty"`
}

// ImageInfo describes a validated upload.
type ImageInfo struct {
	MIMEType string
	Width    int
	Height   int
	Size     int
}

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsSupportedType reports whether mimeType is an accepted image content type.
func IsSupportedType(mimeType string) bool {
	return supportedTypes[mimeType]
}

// Default limits.
const (
	DefaultMaxBytes        = 10 << 20
	DefaultMaxDimension    = 1536
	DefaultProviderTimeout = 30 * time.Second
	DefaultConcurrency     = 4
)
