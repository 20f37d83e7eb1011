package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories"
)

// Release is the interface for the release command.
type Release interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ReleaseOptions) error
}

// ReleaseOptions holds runtime options for a single release.
type ReleaseOptions struct {
	Dir       string // workspace directory, defaults to the current directory
	SkipTests bool
	NoPublish bool
	DryRun    bool // run everything up to publishing, but stage, commit and push nothing
}

// ReleaseCommand releases one package of a workspace together with its dependants:
// select -> bump manifests -> verify in an isolated copy -> publish -> commit -> tag and push.
type ReleaseCommand struct {
	sourceControls *infraRepos.SourceControlRegistry
	buildSystems   *infraRepos.BuildSystemRegistry
	manifests      repositories.ManifestRepository
	operator       repositories.OperatorRepository
}

// NewReleaseCommand creates a new ReleaseCommand.
func NewReleaseCommand(
	sourceControls *infraRepos.SourceControlRegistry,
	buildSystems *infraRepos.BuildSystemRegistry,
	manifests repositories.ManifestRepository,
	operator repositories.OperatorRepository,
) *ReleaseCommand {
	return &ReleaseCommand{
		sourceControls: sourceControls,
		buildSystems:   buildSystems,
		manifests:      manifests,
		operator:       operator,
	}
}

// Execute runs one release. It returns entities.ErrUserAbort when the
// operator cancels; nothing has been written to the working tree by then.
func (it *ReleaseCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ReleaseOptions,
) error {
	log := logger.WithField("run", uuid.NewString())

	loaded, err := loadWorkspace(ctx, it.sourceControls, it.buildSystems, settings, opts.Dir)
	if err != nil {
		return err
	}
	ws := loaded.workspace
	if recoverErr := it.checkInterruptedRun(ws); recoverErr != nil {
		return recoverErr
	}
	if classifyErr := loaded.classifyChanges(ctx); classifyErr != nil {
		return classifyErr
	}

	changed := ws.ChangedPackages()
	if len(changed) == 0 {
		log.Infof("No changed packages in %s%s", ws.Name, versionSuffix(ws))
		return nil
	}

	cacheDir, err := settings.ResolveCacheDir(loaded.sourceControl.Root())
	if err != nil {
		return err
	}

	run := &releaseRun{
		log:           log,
		settings:      settings,
		opts:          opts,
		sourceControl: loaded.sourceControl,
		buildSystem:   loaded.buildSystem,
		manifests:     it.manifests,
		operator:      it.operator,
		workspace:     ws,
		cacheDir:      cacheDir,
		ledger:        entities.NewManifestLedger(),
		pairs:         make(map[string]*entities.ManifestPair),
	}
	if runErr := run.execute(ctx, changed); runErr != nil {
		if errors.Is(runErr, entities.ErrUserAbort) {
			log.Info("Release aborted, nothing was changed")
		}
		return runErr
	}
	return nil
}

// checkInterruptedRun refuses to start while a backup of an earlier run is
// still on disk; releasing on top of it would lose the original manifest.
func (it *ReleaseCommand) checkInterruptedRun(ws *entities.Workspace) error {
	paths := []string{ws.ManifestPath}
	for _, pkg := range ws.Packages {
		paths = append(paths, pkg.ManifestPath)
	}
	for _, path := range paths {
		state, err := it.manifests.Inspect(path)
		if err != nil {
			return err
		}
		if state.Status == entities.ManifestStaged {
			return fmt.Errorf(
				"found %s from an interrupted release, move it back to %s before releasing again",
				state.BackupPath, path,
			)
		}
	}
	return nil
}

func versionSuffix(ws *entities.Workspace) string {
	if ws.Version == nil {
		return ""
	}
	return " v" + ws.Version.String()
}
