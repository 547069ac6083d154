package engine

import "runtime"

// Version is the current version of the propagation engine.
const Version = "0.1.0"

// VersionInfo provides detailed version information.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Build metadata, set with -ldflags "-X".
var (
	GitCommit string
	BuildDate string
)

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}
}
