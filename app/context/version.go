package context

import (
	"fmt"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"
)

// version is overridden at build time with
// -ldflags "-X go.hackfix.me/vemigrate/app/context.version=..."
var version = "v0.0.0-dev"

// VersionInfo describes the build of the running binary.
type VersionInfo struct {
	Semantic  *semver.Version
	Commit    string
	Dirty     bool
	GoVersion string
}

// String returns the version in the format <semver>[ (<commit>[-dirty])].
func (v *VersionInfo) String() string {
	s := "v" + v.Semantic.String()
	if v.Commit == "" {
		return s
	}
	commit := v.Commit
	if len(commit) > 12 { //nolint:mnd // Short commit hash.
		commit = commit[:12]
	}
	if v.Dirty {
		commit += "-dirty"
	}

	return fmt.Sprintf("%s (%s)", s, commit)
}

// GetVersion returns the version of the running binary, taken from the module
// build information if available.
func GetVersion() (*VersionInfo, error) {
	vi := &VersionInfo{}
	ver := version

	if bi, ok := debug.ReadBuildInfo(); ok {
		vi.GoVersion = bi.GoVersion
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			ver = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				vi.Commit = s.Value
			case "vcs.modified":
				vi.Dirty = s.Value == "true"
			}
		}
	}

	sv, err := semver.NewVersion(ver)
	if err != nil {
		return nil, fmt.Errorf("invalid application version '%s': %w", ver, err)
	}
	vi.Semantic = sv

	return vi, nil
}
