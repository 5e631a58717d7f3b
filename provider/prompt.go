package provider

import (
	"encoding/base64"
	"fmt"
	"strings"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
)

// maxResponseTokens bounds provider output; a verdict is a few sentences.
const maxResponseTokens = 400

func buildSystemPrompt() string {
	return fmt.Sprintf(`# Role
You are a forensic image analyst. You decide whether an image was generated by an AI model (diffusion, GAN, or similar) or captured by a camera.

# What to look at
- Anatomy: hands, teeth, ears, eyes and hair strands.
- Text and signage: warped letters or nonsense glyphs.
- Lighting and shadows: inconsistent light sources or missing reflections.
- Texture: waxy skin, over-smooth surfaces, repeated patterns.
- Background: melting or merging objects, impossible geometry.
- Camera traits: natural sensor noise, lens blur, chromatic aberration.

# Format
Return ONLY a JSON object, with no markdown and no prose around it:
{"score": <integer 0-100, likelihood the image is AI-generated>, "label": "%s" | "%s" | "%s", "reason": "<one or two sentences>"}`,
		detector.LabelAI, detector.LabelUncertain, detector.LabelHuman)
}

func buildUserPrompt() string {
	return "Analyze the attached image and answer with the JSON object only."
}

// dataURL encodes an image as an RFC 2397 data URL.
func dataURL(req AnalyzeRequest) string {
	return "data:" + req.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
}

// isRetryableError reports whether a provider error is worth another attempt.
func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"overloaded",
		"unavailable",
		"503",
		"502",
		"500",
		"529",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// retryableStatus classifies an HTTP status code.
func retryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}
