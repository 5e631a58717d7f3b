package detector

// Version information for aidetect.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/Aryangaikwadsql/ai-image-detector.GitCommit=abc1234"
const (
	// Name is the application name.
	Name = "aidetect"

	// Description is a short description of the application.
	Description = "AI image detector - scores images for signs of AI generation"

	// Version is the semantic version of the application.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/Aryangaikwadsql/ai-image-detector"
)

// BuildInfo contains build-time information.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns a user agent string for HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
