package version

import "fmt"

// Overridden at build time, e.g.
// go build -ldflags "-X github.com/oukeidos/promptaudit/internal/version.Version=0.2.0"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("promptaudit %s\ncommit: %s\nbuild: %s", Version, Commit, BuildDate)
}

// UserAgent identifies this tool to Google Cloud APIs.
func UserAgent() string {
	return "promptaudit/" + Version
}
