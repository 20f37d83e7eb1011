//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// PackageBuilder helps create test packages with a fluent interface.
type PackageBuilder struct {
	*testkit.BaseBuilder
	name         string
	version      string
	dir          string
	diff         *entities.Diff
	dependencies []entities.Dependency
}

// NewPackageBuilder creates a new package builder with sensible defaults.
func NewPackageBuilder() *PackageBuilder {
	return &PackageBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "test-package",
		version:     "1.0.0",
	}
}

// WithName sets the package name.
func (b *PackageBuilder) WithName(name string) *PackageBuilder {
	b.name = name
	return b
}

// WithVersion sets the package version.
func (b *PackageBuilder) WithVersion(version string) *PackageBuilder {
	b.version = version
	return b
}

// WithDir sets the package directory; the manifest is Cargo.toml inside it.
// Left empty, a workspace builder places the package under its root.
func (b *PackageBuilder) WithDir(dir string) *PackageBuilder {
	b.dir = dir
	return b
}

// WithDiff sets the pending changes of the package.
func (b *PackageBuilder) WithDiff(diff *entities.Diff) *PackageBuilder {
	b.diff = diff
	return b
}

// WithChangedFiles marks the package as changed with the given relative files.
func (b *PackageBuilder) WithChangedFiles(files ...string) *PackageBuilder {
	b.diff = &entities.Diff{FilesChanged: len(files), Insertions: len(files), ChangedFiles: files}
	return b
}

// WithDependency adds a dependency on another package at the given version.
func (b *PackageBuilder) WithDependency(name, version string) *PackageBuilder {
	b.dependencies = append(b.dependencies, entities.Dependency{Name: name, Requested: version})
	return b
}

// WithRenamedDependency adds a dependency declared under another key.
func (b *PackageBuilder) WithRenamedDependency(key, name, version string) *PackageBuilder {
	b.dependencies = append(b.dependencies, entities.Dependency{Name: name, Key: key, Requested: version})
	return b
}

// WithInheritedDependency adds a dependency whose requirement lives in the workspace manifest.
func (b *PackageBuilder) WithInheritedDependency(name, version string) *PackageBuilder {
	b.dependencies = append(b.dependencies, entities.Dependency{Name: name, Requested: version, Inherited: true})
	return b
}

// Build creates the package (satisfies testkit.Builder interface).
func (b *PackageBuilder) Build() interface{} {
	return b.BuildPackage()
}

// BuildPackage creates the package with a concrete return type.
func (b *PackageBuilder) BuildPackage() *entities.Package {
	return &entities.Package{
		Name:         b.name,
		Version:      semver.MustParse(b.version),
		Dir:          b.dir,
		ManifestPath: filepath.Join(b.dir, "Cargo.toml"),
		Diff:         b.diff,
		Dependencies: append([]entities.Dependency(nil), b.dependencies...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PackageBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-package"
	b.version = "1.0.0"
	b.dir = ""
	b.diff = nil
	b.dependencies = nil
	return b
}

// Clone creates a deep copy of the PackageBuilder.
func (b *PackageBuilder) Clone() testkit.Builder {
	return &PackageBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:         b.name,
		version:      b.version,
		dir:          b.dir,
		diff:         b.diff,
		dependencies: append([]entities.Dependency(nil), b.dependencies...),
	}
}
