package entities

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Update is the kind of release the operator selected for the root package.
// Docs behaves like chore for versioning but is committed with its own type.
type Update struct {
	Kind BumpKind
	Docs bool
}

// Updates lists every selectable update in presentation order.
var Updates = []Update{ //nolint:gochecknoglobals // fixed choice list
	{Kind: BumpChore, Docs: true},
	{Kind: BumpChore},
	{Kind: BumpPatch},
	{Kind: BumpMinor},
	{Kind: BumpMajor},
}

// ParseUpdate converts a name such as "minor" or "docs" into an Update.
func ParseUpdate(name string) (Update, error) {
	for _, u := range Updates {
		if u.Name() == name {
			return u, nil
		}
	}
	return Update{}, fmt.Errorf("unknown update kind %q", name)
}

// Name returns "docs" for documentation updates, otherwise the bump name.
func (u Update) Name() string {
	if u.Docs {
		return "docs"
	}
	return u.Kind.String()
}

// HasVersionEffect reports whether the update changes any version.
func (u Update) HasVersionEffect() bool {
	return !u.Docs && u.Kind.HasVersionEffect()
}

// Bump returns the effective bump kind, which is chore for docs updates.
func (u Update) Bump() BumpKind {
	if u.Docs {
		return BumpChore
	}
	return u.Kind
}

// Apply returns the version after the update.
func (u Update) Apply(version *semver.Version) *semver.Version {
	return u.Bump().Apply(version)
}

// CommitType returns the conventional commit type for the update.
func (u Update) CommitType() string {
	if u.Docs {
		return "docs"
	}
	switch u.Kind {
	case BumpPatch:
		return "fix"
	case BumpMinor:
		return "feat"
	case BumpMajor:
		return "feat"
	default:
		return "chore"
	}
}

// Breaking reports whether the update is a breaking change (major).
func (u Update) Breaking() bool {
	return !u.Docs && u.Kind == BumpMajor
}

// CommitDescription returns the human readable release description.
func (u Update) CommitDescription() string {
	if u.Docs {
		return "documentation update"
	}
	switch u.Kind {
	case BumpPatch:
		return "patch release"
	case BumpMinor:
		return "minor release"
	case BumpMajor:
		return "major release"
	default:
		return "maintenance"
	}
}

// Transition renders "v1.2.3 -> v1.3.0", or just "v1.2.3" when the version is unchanged.
func (u Update) Transition(version *semver.Version) string {
	if !u.HasVersionEffect() {
		return "v" + version.String()
	}
	return fmt.Sprintf("v%s -> v%s", version, u.Apply(version))
}
