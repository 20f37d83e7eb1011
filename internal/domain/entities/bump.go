package entities

import (
	"github.com/Masterminds/semver/v3"
)

// BumpKind is a semantic version increment. Kinds are totally ordered:
// chore < patch < minor < major.
type BumpKind int

const (
	BumpChore BumpKind = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// String returns the lower-case name of the bump kind.
func (b BumpKind) String() string {
	switch b {
	case BumpChore:
		return "chore"
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "unknown"
	}
}

// HasVersionEffect reports whether applying the bump changes a version.
func (b BumpKind) HasVersionEffect() bool {
	return b > BumpChore
}

// Apply returns a new version incremented by the bump kind. The input is not modified.
func (b BumpKind) Apply(version *semver.Version) *semver.Version {
	var next semver.Version
	switch b {
	case BumpPatch:
		next = version.IncPatch()
	case BumpMinor:
		next = version.IncMinor()
	case BumpMajor:
		next = version.IncMajor()
	default:
		next = *version
	}
	return &next
}

// Clamp returns the smaller of b and limit.
func (b BumpKind) Clamp(limit BumpKind) BumpKind {
	if b > limit {
		return limit
	}
	return b
}

// DependantBump resolves the effective bump of one dependant of a released package.
//
//   - a root update without version effect (docs, chore) bumps nothing;
//   - an unchanged dependant always gets a patch bump;
//   - a changed dependant folded into the release commit gets the root bump;
//   - a changed dependant deferred out of the commit gets the root bump clamped to minor.
func DependantBump(root BumpKind, changed, inCommitSet bool) BumpKind {
	if !root.HasVersionEffect() {
		return BumpChore
	}
	if !changed {
		return BumpPatch
	}
	if inCommitSet {
		return root
	}
	return root.Clamp(BumpMinor)
}
