package commands

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories"
)

// loadedWorkspace is a workspace together with the tools configured for it.
type loadedWorkspace struct {
	sourceControl repositories.SourceControlRepository
	buildSystem   repositories.BuildSystemRepository
	workspace     *entities.Workspace
}

func loadWorkspace(
	ctx context.Context,
	sourceControls *infraRepos.SourceControlRegistry,
	buildSystems *infraRepos.BuildSystemRegistry,
	settings *entities.Settings,
	dir string,
) (*loadedWorkspace, error) {
	if dir == "" {
		dir = "."
	}

	sourceControl, err := sourceControls.Open(settings.SourceControl, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open source control: %w", err)
	}
	buildSystem, err := buildSystems.Get(settings.BuildSystem, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize build system: %w", err)
	}
	workspace, err := buildSystem.LoadWorkspace(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	return &loadedWorkspace{
		sourceControl: sourceControl,
		buildSystem:   buildSystem,
		workspace:     workspace,
	}, nil
}

// classifyChanges computes every package diff once and memoizes it on the workspace.
func (l *loadedWorkspace) classifyChanges(ctx context.Context) error {
	diffs := make(map[string]*entities.Diff, len(l.workspace.Packages))
	for _, pkg := range l.workspace.Packages {
		diff, err := l.sourceControl.Diff(ctx, pkg)
		if err != nil {
			return fmt.Errorf("failed to compute diff of %s: %w", pkg.Name, err)
		}
		diffs[pkg.Name] = diff
	}
	l.workspace.ClassifyChanges(diffs)
	return nil
}

// loadPair reads the head and index variants of a manifest. A manifest absent
// from HEAD starts its head variant from the index.
func loadPair(
	sourceControl repositories.SourceControlRepository,
	manifests repositories.ManifestRepository,
	name, path string,
	version *semver.Version,
) (*entities.ManifestPair, error) {
	index, err := manifests.Load(path)
	if err != nil {
		return nil, err
	}
	head := index.Clone()
	if content, headErr := sourceControl.GetContents("HEAD", sourceControl.RelPath(path)); headErr == nil {
		head = entities.ParseManifestDocument(content)
	}

	return &entities.ManifestPair{
		Name:         name,
		ManifestPath: path,
		Version:      version,
		Head:         head,
		Index:        index,
	}, nil
}
