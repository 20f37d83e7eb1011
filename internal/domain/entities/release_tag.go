package entities

import (
	"fmt"
	"strings"

	semverv3 "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"
)

// ReleaseTag names the tag of a release: v<workspace version> when the
// workspace is versioned, <package>-v<package version> otherwise.
type ReleaseTag struct {
	Prefix  string // "" or "<package>-"
	Version string // canonical "vX.Y.Z"
}

// NewReleaseTag picks the tag for a release from the bumped versions.
func NewReleaseTag(workspaceVersion *semverv3.Version, pkg string, pkgVersion *semverv3.Version) ReleaseTag {
	if workspaceVersion != nil {
		return ReleaseTag{Version: "v" + workspaceVersion.String()}
	}
	return ReleaseTag{Prefix: pkg + "-", Version: "v" + pkgVersion.String()}
}

// Name returns the short tag name.
func (t ReleaseTag) Name() string {
	return t.Prefix + t.Version
}

// RefName returns the full reference name of the tag.
func (t ReleaseTag) RefName() string {
	return "refs/tags/" + t.Name()
}

// Validate checks the version is valid semver and newer than every existing
// tag sharing the prefix.
func (t ReleaseTag) Validate(existing []string) error {
	if !semver.IsValid(t.Version) {
		return fmt.Errorf("tag %s is not a valid semantic version", t.Name())
	}
	for _, tag := range existing {
		if !strings.HasPrefix(tag, t.Prefix) {
			continue
		}
		version := strings.TrimPrefix(tag, t.Prefix)
		if !semver.IsValid(version) {
			continue
		}
		if semver.Compare(t.Version, version) <= 0 {
			return fmt.Errorf("tag %s is not newer than existing tag %s", t.Name(), tag)
		}
	}
	return nil
}
