package commands

import (
	"context"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// publisher publishes a package and then every dependant reachable from it,
// each at most once per run.
type publisher struct {
	buildSystem repositories.BuildSystemRepository
	graph       *entities.DependencyGraph
	packages    func(name string) *entities.Package
	isolatedDir string
	dryRun      bool
	versions    map[string]*semver.Version // versions after the bump, by package name
	published   *entities.PublishSet
}

func newPublisher(
	buildSystem repositories.BuildSystemRepository,
	workspace *entities.Workspace,
	isolatedDir string,
	dryRun bool,
	versions map[string]*semver.Version,
) *publisher {
	return &publisher{
		buildSystem: buildSystem,
		graph:       workspace.Graph,
		packages:    workspace.FindPackage,
		isolatedDir: isolatedDir,
		dryRun:      dryRun,
		versions:    versions,
		published:   entities.NewPublishSet(),
	}
}

// publishDeep publishes pkg and recurses into its direct dependants. The
// package is marked before recursing so a diamond reaches it only once.
func (p *publisher) publishDeep(ctx context.Context, pkg *entities.Package) error {
	if p.published.Has(pkg.Name) {
		return nil
	}

	status, err := p.buildSystem.Publish(ctx, pkg, p.isolatedDir, p.dryRun)
	switch {
	case status == repositories.AlreadyPublished, err != nil && entities.IsAlreadyPublished(err):
		logger.Infof("%s v%s is already published, continuing with its dependants", pkg.Name, p.versionOf(pkg))
	case err != nil:
		return &entities.PublishError{Package: pkg.Name, Cause: err}
	case status != repositories.Published:
		return &entities.PublishError{Package: pkg.Name, Cause: entities.ErrPublishRejected}
	}
	p.published.Add(pkg.Name)
	logger.Debugf("Marked %s v%s as published", pkg.Name, p.versionOf(pkg))

	for _, name := range p.graph.Dependants(pkg.Name) {
		dependant := p.packages(name)
		if dependant == nil {
			continue
		}
		if deepErr := p.publishDeep(ctx, dependant); deepErr != nil {
			return deepErr
		}
	}
	return nil
}

func (p *publisher) versionOf(pkg *entities.Package) *semver.Version {
	if version, ok := p.versions[pkg.Name]; ok {
		return version
	}
	return pkg.Version
}
