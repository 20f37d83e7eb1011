package entities

import (
	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"
)

// ManifestPair holds the head and index documents of one manifest. Every
// mutation is applied to both variants identically.
type ManifestPair struct {
	Name         string // package name, empty for the workspace manifest
	ManifestPath string // absolute canonical path
	Version      *semver.Version
	Head         *ManifestDocument
	Index        *ManifestDocument
}

// Document returns the document of the given variant.
func (p *ManifestPair) Document(variant ManifestVariant) *ManifestDocument {
	if variant == VariantHead {
		return p.Head
	}
	return p.Index
}

// BumpVersion rewrites the manifest's own version field.
func (p *ManifestPair) BumpVersion(bump BumpKind) {
	if p.Version == nil || !bump.HasVersionEffect() {
		return
	}
	next := bump.Apply(p.Version)
	logger.Debugf("Bumping %s version %s to %s", p.label(), p.Version, next)
	p.Head.BumpVersion(p.Version, next)
	p.Index.BumpVersion(p.Version, next)
}

// UpdateDependency rewrites the requested version of a dependency.
func (p *ManifestPair) UpdateDependency(name string, old, next *semver.Version) {
	if old.Equal(next) {
		return
	}
	logger.Debugf("Updating %s dependency %s version %s to %s", p.label(), name, old, next)
	p.Head.UpdateDependency(name, old, next)
	p.Index.UpdateDependency(name, old, next)
}

// SetDependencyPath links a dependency by local path and version.
func (p *ManifestPair) SetDependencyPath(name, relPath string, version *semver.Version) {
	logger.Debugf("Setting %s dependency %s path to %s (v%s)", p.label(), name, relPath, version)
	p.Head.SetDependencyPath(name, relPath, version)
	p.Index.SetDependencyPath(name, relPath, version)
}

// SetOrInsertOverride rewrites or appends a workspace-level override entry.
func (p *ManifestPair) SetOrInsertOverride(name string, old *semver.Version, target Override) {
	logger.Debugf("Overriding %s:%s with %s:%s in %s", name, old, name, target.Version, p.label())
	p.Head.SetOrInsertOverride(name, old, target)
	p.Index.SetOrInsertOverride(name, old, target)
}

func (p *ManifestPair) label() string {
	if p.Name == "" {
		return "workspace"
	}
	return p.Name
}
