// Package detector scores images for the likelihood that they were
// AI-generated rather than captured by a camera.
//
// Analysis is delegated to multimodal AI providers (Gemini, OpenAI,
// Anthropic, OpenRouter) tried in order as a fallback chain. Their JSON
// answers are repaired, validated and normalized into a score, a three-way
// label and a short reason. When no provider is configured or every provider
// fails, a deterministic hash-based heuristic produces the verdict instead.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/Aryangaikwadsql/ai-image-detector"
//	    "github.com/Aryangaikwadsql/ai-image-detector/cache"
//	    "github.com/Aryangaikwadsql/ai-image-detector/provider"
//	)
//
//	func main() {
//	    p, err := provider.NewGeminiProvider(provider.GeminiConfig{
//	        APIKey: os.Getenv("GEMINI_API_KEY"),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    a := detector.NewAnalyzer([]detector.Provider{p},
//	        detector.WithCache(cache.NewInMemoryCache(3600)),
//	    )
//
//	    data, _ := os.ReadFile("photo.jpg")
//	    result, err := a.Analyze(context.Background(), data, "")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Score, result.Label, result.Reason)
//	}
package detector
