// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/fred-data/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/fred-data/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/fred-data/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "strings"

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent returns the User-Agent sent to FRED, e.g. "fred-data/1.0.0".
// A product that already carries a version is returned unchanged.
func UserAgent(product string) string {
	if strings.Contains(product, "/") {
		return product
	}
	return product + "/" + Version
}
