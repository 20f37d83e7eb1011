package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/wsrelease/internal/domain/repositories"
	cargoRepo "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories/cargo"
	fsRepo "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories/filesystem"
	gitRepo "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories/git"
	termRepo "github.com/rios0rios0/wsrelease/internal/infrastructure/repositories/terminal"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register source control registry with all source control factories
	if err := container.Provide(func() *SourceControlRegistry {
		reg := NewSourceControlRegistry()
		reg.Register("git", gitRepo.NewSourceControlRepository)
		return reg
	}); err != nil {
		return err
	}

	// Register build system registry with all build system factories
	if err := container.Provide(func() *BuildSystemRegistry {
		reg := NewBuildSystemRegistry()
		reg.Register("cargo", cargoRepo.NewBuildSystemRepository)
		return reg
	}); err != nil {
		return err
	}

	// Register manifest and operator repositories
	if err := container.Provide(fsRepo.NewManifestRepository); err != nil {
		return err
	}
	if err := container.Provide(func(impl *fsRepo.ManifestRepository) domainRepos.ManifestRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(termRepo.NewOperatorRepository); err != nil {
		return err
	}
	if err := container.Provide(func(impl *termRepo.OperatorRepository) domainRepos.OperatorRepository {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
