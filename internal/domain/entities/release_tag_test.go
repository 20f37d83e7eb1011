//go:build unit

package entities_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

func TestNewReleaseTag(t *testing.T) {
	t.Parallel()

	t.Run("should tag the workspace version when there is one", func(t *testing.T) {
		t.Parallel()

		// given / when
		tag := entities.NewReleaseTag(semver.MustParse("0.5.0"), "a", semver.MustParse("1.1.0"))

		// then
		assert.Equal(t, "v0.5.0", tag.Name())
		assert.Equal(t, "refs/tags/v0.5.0", tag.RefName())
	})

	t.Run("should fall back to the package tag", func(t *testing.T) {
		t.Parallel()

		// given / when
		tag := entities.NewReleaseTag(nil, "a", semver.MustParse("1.1.0"))

		// then
		assert.Equal(t, "a-v1.1.0", tag.Name())
		assert.Equal(t, "refs/tags/a-v1.1.0", tag.RefName())
	})
}

func TestReleaseTagValidate(t *testing.T) {
	t.Parallel()

	t.Run("should accept a tag newer than every tag with the same prefix", func(t *testing.T) {
		t.Parallel()

		// given
		tag := entities.NewReleaseTag(nil, "a", semver.MustParse("1.1.0"))

		// when
		err := tag.Validate([]string{"a-v1.0.0", "b-v3.0.0", "v9.0.0", "a-vnext"})

		// then
		require.NoError(t, err)
	})

	t.Run("should reject a tag that already exists", func(t *testing.T) {
		t.Parallel()

		// given
		tag := entities.NewReleaseTag(nil, "a", semver.MustParse("1.1.0"))

		// when
		err := tag.Validate([]string{"a-v1.1.0"})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a-v1.1.0")
	})

	t.Run("should reject a workspace tag older than an existing one", func(t *testing.T) {
		t.Parallel()

		// given
		tag := entities.NewReleaseTag(semver.MustParse("2.0.0"), "a", semver.MustParse("1.0.0"))

		// when
		err := tag.Validate([]string{"a-v3.0.0", "v2.1.0"})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "v2.1.0")
	})
}
