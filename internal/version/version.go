package version

import "fmt"

// Version is the jarmonbuild release, set at build time:
// go build -ldflags "-X github.com/jarmon/jarmonbuild/internal/version.Version=v1.0.0".
var Version = "unknown"

// Build metadata, also injected via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("jarmonbuild %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
