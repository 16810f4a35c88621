// Package buildinfo holds satelliz build metadata set through -ldflags -X.
package buildinfo

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	GitBranch = "unknown"
	BuildDate = "unknown"
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("satelliz %s (commit %s, branch %s, built %s)", Version, GitCommit, GitBranch, BuildDate)
}
