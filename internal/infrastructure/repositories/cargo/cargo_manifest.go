package cargo

import (
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the canonical manifest name of every cargo package.
const ManifestFileName = "Cargo.toml"

type manifest struct {
	Workspace         *workspaceSection         `mapstructure:"workspace"`
	Package           *packageSection           `mapstructure:"package"`
	Dependencies      map[string]dependencySpec `mapstructure:"dependencies"`
	DevDependencies   map[string]dependencySpec `mapstructure:"dev-dependencies"`
	BuildDependencies map[string]dependencySpec `mapstructure:"build-dependencies"`
}

type workspaceSection struct {
	Members      []string                  `mapstructure:"members"`
	Exclude      []string                  `mapstructure:"exclude"`
	Package      workspacePackage          `mapstructure:"package"`
	Dependencies map[string]dependencySpec `mapstructure:"dependencies"`
	Metadata     struct {
		Release struct {
			Name string `mapstructure:"name"`
		} `mapstructure:"release"`
	} `mapstructure:"metadata"`
}

type workspacePackage struct {
	Version string `mapstructure:"version"`
}

type packageSection struct {
	Name    string      `mapstructure:"name"`
	Version interface{} `mapstructure:"version"` // string, or { workspace = true }
}

// dependencySpec covers both `name = "1.0"` and `name = { version = "1.0", path = "../name" }`.
type dependencySpec struct {
	Version   string `mapstructure:"version"`
	Path      string `mapstructure:"path"`
	Package   string `mapstructure:"package"`
	Workspace bool   `mapstructure:"workspace"`
}

func (s *packageSection) inheritsVersion() bool {
	table, ok := s.Version.(map[string]interface{})
	if !ok {
		return false
	}
	inherit, _ := table["workspace"].(bool)
	return inherit
}

func (s *packageSection) versionString() string {
	version, _ := s.Version.(string)
	return version
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return decodeManifest(data, path)
}

func decodeManifest(data []byte, path string) (*manifest, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	result := &manifest{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: bareVersionHook,
		Result:     result,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest decoder: %w", err)
	}
	if decodeErr := decoder.Decode(raw); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, decodeErr)
	}
	return result, nil
}

// bareVersionHook turns `name = "1.0"` into a table with only a version.
func bareVersionHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.String && to == reflect.TypeOf(dependencySpec{}) {
		return map[string]interface{}{"version": data}, nil
	}
	return data, nil
}
