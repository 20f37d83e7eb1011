//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// WorkspaceBuilder helps create test workspaces with a fluent interface.
type WorkspaceBuilder struct {
	*testkit.BaseBuilder
	name     string
	version  string
	dir      string
	packages []*PackageBuilder
}

// NewWorkspaceBuilder creates a new workspace builder with sensible defaults.
func NewWorkspaceBuilder() *WorkspaceBuilder {
	return &WorkspaceBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "test-workspace",
		dir:         "/workspace",
	}
}

// WithName sets the workspace name.
func (b *WorkspaceBuilder) WithName(name string) *WorkspaceBuilder {
	b.name = name
	return b
}

// WithVersion sets the workspace version; empty means none.
func (b *WorkspaceBuilder) WithVersion(version string) *WorkspaceBuilder {
	b.version = version
	return b
}

// WithDir sets the workspace root directory.
func (b *WorkspaceBuilder) WithDir(dir string) *WorkspaceBuilder {
	b.dir = dir
	return b
}

// WithPackage adds a member; a member without a directory is placed under the workspace root.
func (b *WorkspaceBuilder) WithPackage(pkg *PackageBuilder) *WorkspaceBuilder {
	b.packages = append(b.packages, pkg)
	return b
}

// Build creates the workspace (satisfies testkit.Builder interface).
func (b *WorkspaceBuilder) Build() interface{} {
	return b.BuildWorkspace()
}

// BuildWorkspace creates the workspace with a concrete return type. Packages
// keep the diffs set on their builders.
func (b *WorkspaceBuilder) BuildWorkspace() *entities.Workspace {
	var version *semver.Version
	if b.version != "" {
		version = semver.MustParse(b.version)
	}

	packages := make([]*entities.Package, 0, len(b.packages))
	diffs := make(map[string]*entities.Diff, len(b.packages))
	for _, builder := range b.packages {
		pkg := builder.BuildPackage()
		if pkg.Dir == "" {
			pkg.Dir = filepath.Join(b.dir, pkg.Name)
			pkg.ManifestPath = filepath.Join(pkg.Dir, "Cargo.toml")
		}
		packages = append(packages, pkg)
		diffs[pkg.Name] = pkg.Diff
	}

	ws := entities.NewWorkspace(b.name, version, b.dir, filepath.Join(b.dir, "Cargo.toml"), packages)
	ws.ClassifyChanges(diffs)
	return ws
}

// Reset clears the builder state, allowing it to be reused.
func (b *WorkspaceBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-workspace"
	b.version = ""
	b.dir = "/workspace"
	b.packages = nil
	return b
}

// Clone creates a deep copy of the WorkspaceBuilder.
func (b *WorkspaceBuilder) Clone() testkit.Builder {
	packages := make([]*PackageBuilder, 0, len(b.packages))
	for _, pkg := range b.packages {
		packages = append(packages, pkg.Clone().(*PackageBuilder))
	}
	return &WorkspaceBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		version:     b.version,
		dir:         b.dir,
		packages:    packages,
	}
}
