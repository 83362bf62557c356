package utils

import (
	"runtime/debug"
)

const (
	unknownVersion        = "unknown"
	developmentVersion    = "(devel)"
	revisionSettingKey    = "vcs.revision"
	modifiedSettingKey    = "vcs.modified"
	shortRevisionLength   = 12
	modifiedVersionSuffix = "-dirty"
)

// Version is injected at build time with -ldflags "-X github.com/temirov/fsmcp/internal/utils.Version=...".
var Version = ""

// GetApplicationVersion reports the injected Version, then the module version, then the
// VCS revision the binary was built from.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersion
	}
	return versionFromBuildInfo(buildInfo)
}

func versionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	var revision string
	var modified bool
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case revisionSettingKey:
			revision = setting.Value
		case modifiedSettingKey:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	if modified {
		revision += modifiedVersionSuffix
	}
	return revision
}
