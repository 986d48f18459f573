// Package misc holds program identity shared by every other package.
package misc

import "runtime/debug"

// Values are replaced at build time with
// -ldflags="-X leaf/misc.version=... -X leaf/misc.gitHash=...".
var (
	appName = "leaf"
	version = "0.9.0"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns hash provided during build or, when built from a module
// checkout, the revision recorded by the Go toolchain.
func GetGitHash() string {
	if len(gitHash) > 0 {
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
