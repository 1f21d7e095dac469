// Package version holds build metadata injected with ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/newsletter/internal/version.Version=v1.0.0".
package version

import "fmt"

var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the metadata for --version and the admin status page.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
