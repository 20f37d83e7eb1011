package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/pelletier/go-toml/v2"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultRemote        = "origin"
	defaultSourceControl = "git"
	defaultBuildSystem   = "cargo"
	defaultCargoBinary   = "cargo"
)

// Settings is the configuration of a release run.
type Settings struct {
	CacheDir      string        `yaml:"cache_dir"      env:"WSRELEASE_CACHE_DIR"`
	Remote        string        `yaml:"remote"         env:"WSRELEASE_REMOTE"`
	SourceControl string        `yaml:"source_control" env:"WSRELEASE_SOURCE_CONTROL"`
	BuildSystem   string        `yaml:"build_system"   env:"WSRELEASE_BUILD_SYSTEM"`
	Cargo         CargoSettings `yaml:"cargo"`
}

// CargoSettings configures the cargo build system.
type CargoSettings struct {
	Binary        string   `yaml:"binary"         env:"WSRELEASE_CARGO_BINARY"`
	Registry      string   `yaml:"registry"       env:"WSRELEASE_REGISTRY"`
	RegistryToken string   `yaml:"registry_token" env:"WSRELEASE_REGISTRY_TOKEN"`
	TestArgs      []string `yaml:"test_args"`
	PublishArgs   []string `yaml:"publish_args"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Remote:        defaultRemote,
		SourceControl: defaultSourceControl,
		BuildSystem:   defaultBuildSystem,
		Cargo: CargoSettings{
			Binary: defaultCargoBinary,
		},
	}
}

// NewSettings loads settings from the YAML file at path (skipped when path is
// empty), expands ${ENV_VAR} secrets and applies WSRELEASE_* environment overrides.
func NewSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
		}
	}

	if err := env.Parse(settings); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	token, err := ResolveRegistryToken(settings.Cargo.RegistryToken, settings.Cargo.Registry)
	if err != nil {
		return nil, err
	}
	settings.Cargo.RegistryToken = token

	if err := settings.validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// ResolveCacheDir returns the isolated workspace directory for the workspace at
// dir, defaulting to a sibling "<name>-cache" directory.
func (s *Settings) ResolveCacheDir(dir string) (string, error) {
	cacheDir := s.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"-cache")
	} else if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(dir, cacheDir)
	}
	abs, err := filepath.Abs(cacheDir)
	if err != nil {
		return "", fmt.Errorf("invalid cache directory %q: %w", cacheDir, err)
	}
	return abs, nil
}

// FindConfigFile returns the first configuration file found in the workspace
// directory, its .config directory, the user configuration directory or the
// home directory.
func FindConfigFile(dir string) (string, error) {
	candidates := []string{
		filepath.Join(dir, ".wsrelease.yaml"),
		filepath.Join(dir, ".wsrelease.yml"),
		filepath.Join(dir, ".config", "wsrelease.yaml"),
		filepath.Join(dir, ".config", "wsrelease.yml"),
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(configDir, "wsrelease", "config.yaml"),
			filepath.Join(configDir, "wsrelease", "config.yml"),
		)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(homeDir, ".wsrelease.yaml"),
			filepath.Join(homeDir, ".wsrelease.yml"),
		)
	}

	for _, candidate := range candidates {
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config file found for workspace %s", dir)
}

// RegistryTokenEnv is the environment variable cargo reads the token of
// registry from; the default registry uses CARGO_REGISTRY_TOKEN.
func RegistryTokenEnv(registry string) string {
	if registry == "" {
		return "CARGO_REGISTRY_TOKEN"
	}
	return "CARGO_REGISTRIES_" + strings.ToUpper(strings.ReplaceAll(registry, "-", "_")) + "_TOKEN"
}

// ResolveRegistryToken expands ${VAR} references in raw. When the result names
// a file the token is read from it: a cargo credentials.toml is looked up under
// [registry] or [registries.<name>], any other file holds the bare token.
// Without a configured token the variable cargo itself reads is used.
func ResolveRegistryToken(raw, registry string) (string, error) {
	resolved := expandEnv(raw)
	if resolved == "" {
		return os.Getenv(RegistryTokenEnv(registry)), nil
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return resolved, nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read registry token file %q: %w", resolved, err)
	}
	if filepath.Ext(resolved) == ".toml" {
		return credentialsToken(data, resolved, registry)
	}
	logger.Infof("Read registry token from file %q", resolved)
	return strings.TrimSpace(string(data)), nil
}

type registryCredentials struct {
	Token string `toml:"token"`
}

type credentialsFile struct {
	Registry   registryCredentials            `toml:"registry"`
	Registries map[string]registryCredentials `toml:"registries"`
}

func credentialsToken(data []byte, path, registry string) (string, error) {
	var creds credentialsFile
	if err := toml.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("failed to parse credentials file %q: %w", path, err)
	}

	token, section := creds.Registry.Token, "[registry]"
	if registry != "" {
		token, section = creds.Registries[registry].Token, "[registries."+registry+"]"
	}
	if token == "" {
		return "", fmt.Errorf("credentials file %q has no token in %s", path, section)
	}
	logger.Infof("Read registry token from %s of %q", section, path)
	return token, nil
}

func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// validate checks for required configuration values.
func (s *Settings) validate() error {
	if s.Remote == "" {
		return errors.New("remote must not be empty")
	}
	if s.SourceControl == "" {
		return errors.New("source_control must not be empty")
	}
	if s.BuildSystem == "" {
		return errors.New("build_system must not be empty")
	}
	if s.BuildSystem == defaultBuildSystem && s.Cargo.Binary == "" {
		return errors.New("cargo.binary must not be empty")
	}
	return nil
}
