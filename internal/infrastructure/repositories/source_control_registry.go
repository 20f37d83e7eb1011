package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// SourceControlFactory opens the working tree found at (or above) dir.
type SourceControlFactory func(dir string) (domainRepos.SourceControlRepository, error)

// SourceControlRegistry manages all registered source control implementations.
type SourceControlRegistry struct {
	factories map[string]SourceControlFactory
}

// NewSourceControlRegistry creates an empty source control registry.
func NewSourceControlRegistry() *SourceControlRegistry {
	return &SourceControlRegistry{
		factories: make(map[string]SourceControlFactory),
	}
}

// Register adds a source control factory under the given name (e.g. "git").
func (r *SourceControlRegistry) Register(name string, factory SourceControlFactory) {
	r.factories[name] = factory
}

// Open returns a source control repository of the named kind for dir.
func (r *SourceControlRegistry) Open(name, dir string) (domainRepos.SourceControlRepository, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown source control type: %q", name)
	}
	return factory(dir)
}

// Names returns the sorted list of registered source control names.
func (r *SourceControlRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
