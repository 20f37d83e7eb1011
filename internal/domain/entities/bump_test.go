//go:build unit

package entities_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

func TestBumpKindApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bump     entities.BumpKind
		expected string
	}{
		{name: "chore keeps the version", bump: entities.BumpChore, expected: "1.2.3"},
		{name: "patch increments the patch number", bump: entities.BumpPatch, expected: "1.2.4"},
		{name: "minor resets the patch number", bump: entities.BumpMinor, expected: "1.3.0"},
		{name: "major resets minor and patch", bump: entities.BumpMajor, expected: "2.0.0"},
	}

	for _, tt := range tests {
		t.Run("should apply "+tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			version := semver.MustParse("1.2.3")

			// when
			result := tt.bump.Apply(version)

			// then
			assert.Equal(t, tt.expected, result.String())
			assert.Equal(t, "1.2.3", version.String())
		})
	}
}

func TestBumpKindOrdering(t *testing.T) {
	t.Parallel()

	t.Run("should order chore below patch below minor below major", func(t *testing.T) {
		t.Parallel()

		// given
		kinds := []entities.BumpKind{entities.BumpChore, entities.BumpPatch, entities.BumpMinor, entities.BumpMajor}

		// when / then
		for i := 1; i < len(kinds); i++ {
			assert.Less(t, kinds[i-1], kinds[i])
		}
	})

	t.Run("should only give version effect to patch and above", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.False(t, entities.BumpChore.HasVersionEffect())
		assert.True(t, entities.BumpPatch.HasVersionEffect())
		assert.True(t, entities.BumpMinor.HasVersionEffect())
		assert.True(t, entities.BumpMajor.HasVersionEffect())
	})

	t.Run("should clamp to the limit", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, entities.BumpMinor, entities.BumpMajor.Clamp(entities.BumpMinor))
		assert.Equal(t, entities.BumpPatch, entities.BumpPatch.Clamp(entities.BumpMinor))
	})

	t.Run("should render lower-case names", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, "chore", entities.BumpChore.String())
		assert.Equal(t, "major", entities.BumpMajor.String())
	})
}

func TestDependantBump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		root        entities.BumpKind
		changed     bool
		inCommitSet bool
		expected    entities.BumpKind
	}{
		{name: "chore root bumps nothing", root: entities.BumpChore, changed: true, inCommitSet: true, expected: entities.BumpChore},
		{name: "unchanged dependant of a major gets a patch", root: entities.BumpMajor, expected: entities.BumpPatch},
		{name: "unchanged dependant of a patch gets a patch", root: entities.BumpPatch, expected: entities.BumpPatch},
		{name: "changed dependant in the commit gets the root bump", root: entities.BumpMajor, changed: true, inCommitSet: true, expected: entities.BumpMajor},
		{name: "changed deferred dependant is clamped to minor", root: entities.BumpMajor, changed: true, expected: entities.BumpMinor},
		{name: "changed deferred dependant of a patch keeps the patch", root: entities.BumpPatch, changed: true, expected: entities.BumpPatch},
	}

	for _, tt := range tests {
		t.Run("should resolve when "+tt.name, func(t *testing.T) {
			t.Parallel()

			// given / when
			result := entities.DependantBump(tt.root, tt.changed, tt.inCommitSet)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("should never exceed the root bump", func(t *testing.T) {
		t.Parallel()

		// given
		roots := []entities.BumpKind{entities.BumpChore, entities.BumpPatch, entities.BumpMinor, entities.BumpMajor}

		// when / then
		for _, root := range roots {
			for _, changed := range []bool{false, true} {
				for _, inCommitSet := range []bool{false, true} {
					assert.LessOrEqual(t, entities.DependantBump(root, changed, inCommitSet), root)
				}
			}
		}
	})
}
