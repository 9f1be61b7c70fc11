package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/promote/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/promote/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/promote/internal/version.Date={{.Date}}
)

// ManifestVersion is the marker written to and checked against a manifest's
// scriptrunner_version property
func ManifestVersion() string {
	return Version
}
