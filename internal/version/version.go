package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Populated through -ldflags "-X grupy/internal/version.Version=...".
var (
	Version   = "0.1.0"
	Commit    = "none"
	BuildTime = "unknown"
)

// Info is the resolved build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
}

var (
	readBuildInfo = debug.ReadBuildInfo
	resolveOnce   sync.Once
	resolved      Info
)

// Get returns build metadata. Values left at their defaults by ldflags are
// filled from the VCS stamp the Go toolchain embeds in the binary.
func Get() Info {
	resolveOnce.Do(func() { resolved = resolve(readBuildInfo) })
	return resolved
}

func resolve(read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime, GoVersion: runtime.Version()}
	bi, ok := read()
	if !ok || bi == nil {
		return info
	}
	if bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" && s.Value != "" {
				info.Commit = s.Value[:min(len(s.Value), 12)]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && s.Value != "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version line printed by `grupy version`.
func Full() string {
	info := Get()
	commit := info.Commit
	if info.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("grupy %s (commit %s, built %s, %s)", info.Version, commit, info.BuildTime, info.GoVersion)
}
