package promotion

import (
	goversion "github.com/hashicorp/go-version"
)

// VersionsCompatible reports whether a manifest built by manifestVersion may
// be executed by currentVersion. Versions must be equal; when both parse as
// semantic versions they are compared numerically, so 3.1 equals 3.1.0.
func VersionsCompatible(currentVersion, manifestVersion string) bool {
	if currentVersion == manifestVersion {
		return true
	}
	current, err := goversion.NewVersion(currentVersion)
	if err != nil {
		return false
	}
	built, err := goversion.NewVersion(manifestVersion)
	if err != nil {
		return false
	}
	return current.Equal(built)
}
