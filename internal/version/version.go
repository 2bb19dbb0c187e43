package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func GetVersionString() string {
	if GitCommit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
