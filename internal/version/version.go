package version // import "github.com/Xunop/e-library/internal/version"

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service version, overridden at build time with
// -ldflags "-X github.com/Xunop/e-library/internal/version.Version=x.y.z".
var Version = "0.1.0"

// DevVersion is reported when Version is not a semantic version.
const DevVersion = "0.0.0-dev"

func GetCurrentVersion() string {
	if !semver.IsValid("v" + strings.TrimPrefix(Version, "v")) {
		return DevVersion
	}
	return strings.TrimPrefix(Version, "v")
}

// GetMinorVersion extracts the minor version (e.g. 0.2) from a version
// string, it returns "" for invalid input.
func GetMinorVersion(version string) string {
	return strings.TrimPrefix(semver.MajorMinor("v"+version), "v")
}
