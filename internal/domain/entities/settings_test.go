//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".wsrelease.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestNewSettings(t *testing.T) {
	t.Run("should load the YAML file over the defaults", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("WSRELEASE_TEST_TOKEN", "secret-token")
		path := writeConfig(t, `
remote: upstream
cargo:
  registry: internal
  registry_token: ${WSRELEASE_TEST_TOKEN}
  test_args: ["--all-features"]
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "upstream", settings.Remote)
		assert.Equal(t, "git", settings.SourceControl)
		assert.Equal(t, "cargo", settings.BuildSystem)
		assert.Equal(t, "cargo", settings.Cargo.Binary)
		assert.Equal(t, "internal", settings.Cargo.Registry)
		assert.Equal(t, "secret-token", settings.Cargo.RegistryToken)
		assert.Equal(t, []string{"--all-features"}, settings.Cargo.TestArgs)
	})

	t.Run("should apply environment overrides", func(t *testing.T) {
		// given
		t.Setenv("WSRELEASE_REMOTE", "fork")
		t.Setenv("WSRELEASE_CARGO_BINARY", "/opt/cargo/bin/cargo")

		// when
		settings, err := entities.NewSettings("")

		// then
		require.NoError(t, err)
		assert.Equal(t, "fork", settings.Remote)
		assert.Equal(t, "/opt/cargo/bin/cargo", settings.Cargo.Binary)
	})

	t.Run("should reject an empty cargo binary", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "cargo:\n  binary: \"\"\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cargo.binary")
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "missing.yaml")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
	})

	t.Run("should fail on malformed YAML", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "remote: [unterminated\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestResolveRegistryToken(t *testing.T) {
	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()

		// given / when
		result, err := entities.ResolveRegistryToken("cio_abc123", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "cio_abc123", result)
	})

	t.Run("should expand environment variable reference", func(t *testing.T) {
		// given
		t.Setenv("WSRELEASE_RESOLVE_TOKEN", "from-env")

		// when
		result, err := entities.ResolveRegistryToken("${WSRELEASE_RESOLVE_TOKEN}", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", result)
	})

	t.Run("should fall back to the variable cargo reads for the registry", func(t *testing.T) {
		// given
		t.Setenv("CARGO_REGISTRIES_MY_MIRROR_TOKEN", "mirror-token")

		// when
		result, err := entities.ResolveRegistryToken("", "my-mirror")

		// then
		require.NoError(t, err)
		assert.Equal(t, "mirror-token", result)
	})

	t.Run("should read a bare token from a file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0o600))

		// when
		result, err := entities.ResolveRegistryToken(path, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "file-token", result)
	})

	t.Run("should read the token of the registry from a credentials file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "credentials.toml")
		content := "[registry]\ntoken = \"default-token\"\n\n[registries.internal]\ntoken = \"internal-token\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		internal, internalErr := entities.ResolveRegistryToken(path, "internal")
		fallback, fallbackErr := entities.ResolveRegistryToken(path, "")

		// then
		require.NoError(t, internalErr)
		require.NoError(t, fallbackErr)
		assert.Equal(t, "internal-token", internal)
		assert.Equal(t, "default-token", fallback)
	})

	t.Run("should fail when the credentials file has no token for the registry", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "credentials.toml")
		require.NoError(t, os.WriteFile(path, []byte("[registry]\ntoken = \"default-token\"\n"), 0o600))

		// when
		_, err := entities.ResolveRegistryToken(path, "internal")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[registries.internal]")
	})
}

func TestRegistryTokenEnv(t *testing.T) {
	t.Parallel()

	t.Run("should name the variable of the default and of a named registry", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, "CARGO_REGISTRY_TOKEN", entities.RegistryTokenEnv(""))
		assert.Equal(t, "CARGO_REGISTRIES_MY_MIRROR_TOKEN", entities.RegistryTokenEnv("my-mirror"))
	})
}

//nolint:paralleltest // overrides HOME and XDG_CONFIG_HOME
func TestFindConfigFile(t *testing.T) {
	isolateHome := func(t *testing.T) string {
		t.Helper()
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
		return home
	}

	t.Run("should prefer the workspace directory", func(t *testing.T) {
		// given
		home := isolateHome(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".wsrelease.yml"), []byte("remote: origin\n"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(home, ".wsrelease.yaml"), []byte("remote: origin\n"), 0o600))

		// when
		path, err := entities.FindConfigFile(dir)

		// then
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".wsrelease.yml"), path)
	})

	t.Run("should fall back to the user configuration directory", func(t *testing.T) {
		// given
		isolateHome(t)
		configDir, err := os.UserConfigDir()
		require.NoError(t, err)
		expected := filepath.Join(configDir, "wsrelease", "config.yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(expected), 0o755))
		require.NoError(t, os.WriteFile(expected, []byte("remote: origin\n"), 0o600))

		// when
		path, findErr := entities.FindConfigFile(t.TempDir())

		// then
		require.NoError(t, findErr)
		assert.Equal(t, expected, path)
	})

	t.Run("should fail when no file exists", func(t *testing.T) {
		// given
		isolateHome(t)

		// when
		_, err := entities.FindConfigFile(t.TempDir())

		// then
		require.Error(t, err)
	})
}

func TestSettingsResolveCacheDir(t *testing.T) {
	t.Parallel()

	t.Run("should default to a sibling cache directory", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()

		// when
		dir, err := settings.ResolveCacheDir("/src/repo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "/src/repo-cache", dir)
	})

	t.Run("should resolve a relative cache directory inside the workspace", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()
		settings.CacheDir = "target/release-cache"

		// when
		dir, err := settings.ResolveCacheDir("/src/repo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "/src/repo/target/release-cache", dir)
	})

	t.Run("should keep an absolute cache directory", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()
		settings.CacheDir = "/var/cache/wsrelease"

		// when
		dir, err := settings.ResolveCacheDir("/src/repo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "/var/cache/wsrelease", dir)
	})
}
