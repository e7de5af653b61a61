// Package buildinfo describes the build of the dcolumn binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// BuildInfo holds information about the build of an executable artifact.
type BuildInfo struct {
	Version    string
	CommitHash string
	BuildDate  string
}

// New returns the build info set by the linker. Missing commit and date are filled from the
// VCS stamp of the Go toolchain when available.
func New(version, commitHash, buildDate string) BuildInfo {
	i := BuildInfo{Version: version, CommitHash: commitHash, BuildDate: buildDate}
	if bi, ok := debug.ReadBuildInfo(); ok {
		i.fill(bi.Settings)
	}
	return i
}

func (i *BuildInfo) fill(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.CommitHash == "" || i.CommitHash == "n/a" {
				i.CommitHash = s.Value
			}
		case "vcs.time":
			if i.BuildDate == "" || i.BuildDate == "<unknown>" {
				i.BuildDate = s.Value
			}
		}
	}
}

// String returns the build info as a string.
func (i BuildInfo) String() string {
	return fmt.Sprintf("dcolumn %s (%s) built on %s", i.Version, i.CommitHash, i.BuildDate)
}
