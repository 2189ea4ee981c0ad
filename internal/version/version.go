// Package version reports the build version of legend-matcher binaries.
package version

import "fmt"

// Set at build time with -ldflags "-X legend-matcher/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns "version (commit, built time)".
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
