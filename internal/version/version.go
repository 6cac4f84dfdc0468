package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/webrig/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/webrig/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/webrig/internal/version.Date={{.Date}}
)

// String describes the build on three lines
func String() string {
	return fmt.Sprintf("webrig version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
