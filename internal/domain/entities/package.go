package entities

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Package is one member of a workspace.
type Package struct {
	Name         string
	Version      *semver.Version
	Dir          string // absolute directory of the package
	ManifestPath string // absolute path of the package manifest
	Diff         *Diff
	Dependencies []Dependency
}

// Dependency is a requirement declared by a package manifest.
type Dependency struct {
	Name      string
	Key       string // key in the manifest when it differs from Name (`alias = { package = "name" }`)
	Requested string // requested version as written in the manifest, may be empty
	Path      string // local path as written in the manifest, may be empty
	Inherited bool   // declared as `{ workspace = true }`, the requirement lives in the workspace manifest
	Member    bool   // true when Name is another member of the same workspace
	Changed   bool   // memoized from the referenced member's Diff at load time
}

// ManifestKey returns the key the dependency is declared under.
func (d Dependency) ManifestKey() string {
	if d.Key != "" {
		return d.Key
	}
	return d.Name
}

// IsChanged reports whether the package has pending changes.
func (p *Package) IsChanged() bool {
	return !p.Diff.IsEmpty()
}

// ChangedDependencies returns the names of member dependencies with pending changes.
func (p *Package) ChangedDependencies() []string {
	var names []string
	for _, dep := range p.Dependencies {
		if dep.Member && dep.Changed {
			names = append(names, dep.Name)
		}
	}
	return names
}

// MemberDependencies returns the dependencies that reference other workspace members.
func (p *Package) MemberDependencies() []Dependency {
	var deps []Dependency
	for _, dep := range p.Dependencies {
		if dep.Member {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Summary renders the package with its diff statistics and changed dependencies.
func (p *Package) Summary() string {
	label := fmt.Sprintf("%s v%s", p.Name, p.Version)
	if p.IsChanged() {
		label += fmt.Sprintf(" (%d files, +%d -%d)", p.Diff.FilesChanged, p.Diff.Insertions, p.Diff.Deletions)
	}
	if deps := p.ChangedDependencies(); len(deps) > 0 {
		label += " [changed deps: " + strings.Join(deps, ", ") + "]"
	}
	return label
}
