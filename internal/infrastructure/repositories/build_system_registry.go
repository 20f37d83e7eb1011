package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	domainRepos "github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// BuildSystemFactory creates a build system configured from the run settings.
type BuildSystemFactory func(settings *entities.Settings) domainRepos.BuildSystemRepository

// BuildSystemRegistry manages all registered build system implementations.
type BuildSystemRegistry struct {
	factories map[string]BuildSystemFactory
}

// NewBuildSystemRegistry creates an empty build system registry.
func NewBuildSystemRegistry() *BuildSystemRegistry {
	return &BuildSystemRegistry{
		factories: make(map[string]BuildSystemFactory),
	}
}

// Register adds a build system factory under the given name (e.g. "cargo").
func (r *BuildSystemRegistry) Register(name string, factory BuildSystemFactory) {
	r.factories[name] = factory
}

// Get returns a configured build system for the given name.
func (r *BuildSystemRegistry) Get(name string, settings *entities.Settings) (domainRepos.BuildSystemRepository, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown build system type: %q", name)
	}
	return factory(settings), nil
}

// Names returns the sorted list of registered build system names.
func (r *BuildSystemRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
