package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories"
)

// UpdatePaths is the interface for the update-paths command.
type UpdatePaths interface {
	Execute(ctx context.Context, settings *entities.Settings, opts UpdatePathsOptions) error
}

// UpdatePathsOptions holds runtime options for update-paths.
type UpdatePathsOptions struct {
	Dir       string
	DryRun    bool     // write previews only
	ForceDeps bool     // also require the versions found in the Deps workspaces
	Deps      []string // directories of other workspaces to override dependencies with
}

// UpdatePathsCommand links workspace members to each other by local path and
// optionally overrides external dependencies with the packages of other
// workspaces checked out next to this one.
type UpdatePathsCommand struct {
	sourceControls *infraRepos.SourceControlRegistry
	buildSystems   *infraRepos.BuildSystemRegistry
	manifests      repositories.ManifestRepository
}

// NewUpdatePathsCommand creates a new UpdatePathsCommand.
func NewUpdatePathsCommand(
	sourceControls *infraRepos.SourceControlRegistry,
	buildSystems *infraRepos.BuildSystemRegistry,
	manifests repositories.ManifestRepository,
) *UpdatePathsCommand {
	return &UpdatePathsCommand{
		sourceControls: sourceControls,
		buildSystems:   buildSystems,
		manifests:      manifests,
	}
}

// Execute rewrites the manifests of the workspace found in opts.Dir.
func (it *UpdatePathsCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts UpdatePathsOptions,
) error {
	loaded, err := loadWorkspace(ctx, it.sourceControls, it.buildSystems, settings, opts.Dir)
	if err != nil {
		return err
	}
	ws := loaded.workspace

	pairs := make(map[string]*entities.ManifestPair)
	var order []string
	pairFor := func(name, path string, version *semver.Version) (*entities.ManifestPair, error) {
		if pair, ok := pairs[path]; ok {
			return pair, nil
		}
		pair, pairErr := loadPair(loaded.sourceControl, it.manifests, name, path, version)
		if pairErr != nil {
			return nil, pairErr
		}
		pairs[path] = pair
		order = append(order, path)
		return pair, nil
	}

	for _, pkg := range ws.Packages {
		for _, dep := range pkg.MemberDependencies() {
			target := ws.FindPackage(dep.Name)
			// an inherited requirement is linked once, relative to the workspace root
			owner, from := pkg, pkg.Dir
			if dep.Inherited {
				owner, from = nil, ws.Dir
			}
			pair, pairErr := declaringPair(ws, owner, pairFor)
			if pairErr != nil {
				return pairErr
			}
			pair.SetDependencyPath(dep.ManifestKey(), relativePath(from, target.Dir), target.Version)
		}
	}

	for _, dir := range opts.Deps {
		external, loadErr := loaded.buildSystem.LoadWorkspace(ctx, dir)
		if loadErr != nil {
			return fmt.Errorf("failed to load dependency workspace %s: %w", dir, loadErr)
		}
		logger.Infof("Overriding dependencies with workspace %s in %s", external.Name, external.Dir)
		if overrideErr := it.overrideWith(ws, external, opts.ForceDeps, pairFor); overrideErr != nil {
			return overrideErr
		}
	}

	return it.write(order, pairs, opts.DryRun)
}

// overrideWith points every dependency the members take from external at its local checkout.
func (it *UpdatePathsCommand) overrideWith(
	ws, external *entities.Workspace,
	force bool,
	pairFor func(name, path string, version *semver.Version) (*entities.ManifestPair, error),
) error {
	wsPair, err := pairFor("", ws.ManifestPath, ws.Version)
	if err != nil {
		return err
	}

	overridden := make(map[string]bool)
	for _, pkg := range ws.Packages {
		for _, dep := range pkg.Dependencies {
			if dep.Member {
				continue
			}
			provider := external.FindPackage(dep.Name)
			if provider == nil {
				continue
			}

			requested, parseErr := semver.StrictNewVersion(trimRequirement(dep.Requested))
			if parseErr != nil {
				logger.Warnf("Skipping %s dependency %s: requested version %q is not exact", pkg.Name, dep.Name, dep.Requested)
				continue
			}

			// the override key must match the version the members end up requiring
			target := requested
			if force {
				owner := pkg
				if dep.Inherited {
					owner = nil
				}
				pair, pairErr := declaringPair(ws, owner, pairFor)
				if pairErr != nil {
					return pairErr
				}
				pair.UpdateDependency(dep.ManifestKey(), requested, provider.Version)
				target = provider.Version
			}

			if overridden[dep.Name] {
				continue
			}
			overridden[dep.Name] = true
			wsPair.SetOrInsertOverride(dep.Name, requested, entities.Override{
				Version: target,
				Path:    relativePath(ws.Dir, provider.Dir),
			})
		}
	}
	return nil
}

func (it *UpdatePathsCommand) write(order []string, pairs map[string]*entities.ManifestPair, dryRun bool) error {
	for _, path := range order {
		pair := pairs[path]
		for _, variant := range []entities.ManifestVariant{entities.VariantHead, entities.VariantIndex} {
			if err := it.manifests.SavePreview(path, variant, pair.Document(variant)); err != nil {
				return err
			}
		}

		if dryRun {
			logger.Infof("Previews of %s written next to it", path)
			continue
		}
		if err := it.manifests.PromoteIndexPreview(path); err != nil {
			return err
		}
		if err := it.manifests.RemovePreviews(path); err != nil {
			return err
		}
		logger.Infof("Updated %s", path)
	}
	return nil
}

// declaringPair returns the manifest pair of pkg, or of the workspace when pkg is nil.
func declaringPair(
	ws *entities.Workspace,
	pkg *entities.Package,
	pairFor func(name, path string, version *semver.Version) (*entities.ManifestPair, error),
) (*entities.ManifestPair, error) {
	if pkg == nil {
		return pairFor("", ws.ManifestPath, ws.Version)
	}
	return pairFor(pkg.Name, pkg.ManifestPath, pkg.Version)
}

func relativePath(from, to string) string {
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return filepath.ToSlash(to)
	}
	return filepath.ToSlash(rel)
}

// trimRequirement drops a leading comparison operator from a requested version.
func trimRequirement(requested string) string {
	for len(requested) > 0 && (requested[0] == '=' || requested[0] == '^' || requested[0] == '~') {
		requested = requested[1:]
	}
	return requested
}
