// Package version carries the build identification stamped into the
// retouch binaries.
package version

// Overridden at link time via
// -ldflags "-X photo-retouch/internal/version.Version=...".
var (
	// Version is the release version of this build.
	Version = "0.1.0"

	// BuildTime is when the binary was built, UTC.
	BuildTime = "unknown"

	// GitCommit identifies the exact source revision.
	GitCommit = "unknown"
)
