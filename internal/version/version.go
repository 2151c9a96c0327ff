// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

var (
	// These are set via ldflags at build time
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a one-line version string for the -v flag.
func Info() string {
	return fmt.Sprintf("quota-monitor-tui %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
