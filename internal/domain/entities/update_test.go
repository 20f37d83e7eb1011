//go:build unit

package entities_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/test/domain/entitybuilders"
)

func TestParseUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should parse every selectable update by name", func(t *testing.T) {
		t.Parallel()

		for _, update := range entities.Updates {
			// given
			name := update.Name()

			// when
			parsed, err := entities.ParseUpdate(name)

			// then
			require.NoError(t, err)
			assert.Equal(t, update, parsed)
		}
	})

	t.Run("should reject an unknown name", func(t *testing.T) {
		t.Parallel()

		// given / when
		_, err := entities.ParseUpdate("hotfix")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hotfix")
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should treat docs like chore for versioning", func(t *testing.T) {
		t.Parallel()

		// given
		docs := entities.Update{Kind: entities.BumpChore, Docs: true}

		// when / then
		assert.Equal(t, entities.BumpChore, docs.Bump())
		assert.False(t, docs.HasVersionEffect())
		assert.Equal(t, "docs", docs.CommitType())
		assert.Equal(t, "v1.0.0", docs.Transition(semver.MustParse("1.0.0")))
	})

	t.Run("should map bumps to conventional commit types", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, "chore", entities.Update{Kind: entities.BumpChore}.CommitType())
		assert.Equal(t, "fix", entities.Update{Kind: entities.BumpPatch}.CommitType())
		assert.Equal(t, "feat", entities.Update{Kind: entities.BumpMinor}.CommitType())
		assert.Equal(t, "feat", entities.Update{Kind: entities.BumpMajor}.CommitType())
	})

	t.Run("should only mark major as breaking", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.True(t, entities.Update{Kind: entities.BumpMajor}.Breaking())
		assert.False(t, entities.Update{Kind: entities.BumpMinor}.Breaking())
	})

	t.Run("should render the version transition", func(t *testing.T) {
		t.Parallel()

		// given
		update := entities.Update{Kind: entities.BumpMinor}

		// when
		result := update.Transition(semver.MustParse("1.0.0"))

		// then
		assert.Equal(t, "v1.0.0 -> v1.1.0", result)
	})
}

func TestCommitMessage(t *testing.T) {
	t.Parallel()

	t.Run("should build the release commit subject", func(t *testing.T) {
		t.Parallel()

		// given
		pkg := entitybuilders.NewPackageBuilder().WithName("a").WithVersion("1.0.0").BuildPackage()

		// when
		message := entities.CommitMessage(pkg, entities.Update{Kind: entities.BumpMinor}, "", "", false)

		// then
		assert.Equal(t, "feat(a): minor release of a v1.0.0 -> v1.1.0", message)
	})

	t.Run("should replace the first dash of the scope with a slash", func(t *testing.T) {
		t.Parallel()

		// given
		pkg := entitybuilders.NewPackageBuilder().WithName("core-io-util").WithVersion("0.3.1").BuildPackage()

		// when
		message := entities.CommitMessage(pkg, entities.Update{Kind: entities.BumpPatch}, "", "", false)

		// then
		assert.Equal(t, "fix(core/io-util): patch release of core-io-util v0.3.1 -> v0.3.2", message)
	})

	t.Run("should mark major releases as breaking", func(t *testing.T) {
		t.Parallel()

		// given
		pkg := entitybuilders.NewPackageBuilder().WithName("a").WithVersion("1.4.2").BuildPackage()

		// when
		message := entities.CommitMessage(pkg, entities.Update{Kind: entities.BumpMajor}, "", "", false)

		// then
		assert.Equal(t, "feat(a)!: major release of a v1.4.2 -> v2.0.0", message)
	})

	t.Run("should use the star scope for dependants", func(t *testing.T) {
		t.Parallel()

		// given
		pkg := entitybuilders.NewPackageBuilder().WithName("a").WithVersion("1.0.0").BuildPackage()

		// when
		message := entities.CommitMessage(pkg, entities.Update{Kind: entities.BumpMinor}, "", "", true)

		// then
		assert.Equal(t, "feat(*): minor release of a v1.0.0 -> v1.1.0", message)
	})

	t.Run("should append the header and the body", func(t *testing.T) {
		t.Parallel()

		// given
		pkg := entitybuilders.NewPackageBuilder().WithName("a").WithVersion("1.0.0").BuildPackage()

		// when
		message := entities.CommitMessage(
			pkg, entities.Update{Kind: entities.BumpChore, Docs: true}, " new guide ", "Explains the setup.\n", false,
		)

		// then
		assert.Equal(t, "docs(a): documentation update of a v1.0.0 (new guide)\n\nExplains the setup.", message)
	})
}
