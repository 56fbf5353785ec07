package bingo

// Version information for bingo.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/bingo.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "bingo"

	// Description is a short description of the application.
	Description = "Bing web translator client with a persistent session cache"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/bingo"

	// License is the software license.
	License = "MIT"
)

// Build information, set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version with the short commit hash appended
// when one was recorded at build time.
func FullVersion() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}

// UserAgent returns the user agent sent by the OpenAI engine and the
// languages fetch.
func UserAgent() string {
	return Name + "/" + Version
}
