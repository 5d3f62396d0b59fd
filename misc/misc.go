// Package misc keeps program identification helpers.
package misc

import "runtime/debug"

const appName = "ipg"

// set by the linker during release builds
var (
	version = ""
	gitHash = ""
)

// GetAppName returns short program name used in logs, reports and temp files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version - either set at link time or taken from
// module build information.
func GetVersion() string {
	if len(version) != 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns VCS revision recorded in build information.
func GetGitHash() string {
	if len(gitHash) != 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
