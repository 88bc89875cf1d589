// Package utils provides helper functions shared by the copier packages.
package utils

import (
	"runtime/debug"
)

const (
	unknownVersion      = "unknown"
	develVersion        = "(devel)"
	vcsRevisionKey      = "vcs.revision"
	vcsModifiedKey      = "vcs.modified"
	shortRevisionLength = 12
	dirtySuffix         = "-dirty"
)

// GetApplicationVersion reports the module version from the build information, falling back
// to the VCS revision stamped by the Go toolchain for development builds.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	return versionFromSettings(buildInfo.Settings)
}

func versionFromSettings(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, setting := range settings {
		switch setting.Key {
		case vcsRevisionKey:
			revision = setting.Value
		case vcsModifiedKey:
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
		revision += dirtySuffix
	}
	return revision
}
