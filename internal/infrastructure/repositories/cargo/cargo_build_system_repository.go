package cargo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// BuildSystemRepository drives the cargo binary.
type BuildSystemRepository struct {
	settings entities.CargoSettings
}

var _ repositories.BuildSystemRepository = (*BuildSystemRepository)(nil)

// NewBuildSystemRepository creates a cargo build system from the run settings.
func NewBuildSystemRepository(settings *entities.Settings) repositories.BuildSystemRepository {
	return &BuildSystemRepository{settings: settings.Cargo}
}

func (it *BuildSystemRepository) Name() string { return "cargo" }

// LoadWorkspace reads the root manifest and every member manifest it names.
func (it *BuildSystemRepository) LoadWorkspace(_ context.Context, dir string) (*entities.Workspace, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	rootPath := filepath.Join(dir, ManifestFileName)
	root, err := readManifest(rootPath)
	if err != nil {
		return nil, err
	}

	var (
		name             = filepath.Base(dir)
		workspaceVersion *semver.Version
		shared           map[string]dependencySpec
		memberDirs       []string
	)
	if root.Workspace != nil {
		if root.Workspace.Metadata.Release.Name != "" {
			name = root.Workspace.Metadata.Release.Name
		}
		if root.Workspace.Package.Version != "" {
			workspaceVersion, err = semver.StrictNewVersion(root.Workspace.Package.Version)
			if err != nil {
				return nil, fmt.Errorf("invalid workspace version %q: %w", root.Workspace.Package.Version, err)
			}
		}
		shared = root.Workspace.Dependencies
		memberDirs, err = expandMembers(dir, root.Workspace.Members, root.Workspace.Exclude)
		if err != nil {
			return nil, err
		}
	}
	if root.Package != nil && !containsString(memberDirs, dir) {
		memberDirs = append(memberDirs, dir)
	}

	packages := make([]*entities.Package, 0, len(memberDirs))
	for _, memberDir := range memberDirs {
		pkg, loadErr := loadPackage(memberDir, workspaceVersion, shared)
		if loadErr != nil {
			return nil, loadErr
		}
		packages = append(packages, pkg)
	}

	logger.Debugf("Loaded workspace %s with %d packages", name, len(packages))
	return entities.NewWorkspace(name, workspaceVersion, dir, rootPath, packages), nil
}

// RunTests runs `cargo test` for the package. A failing suite is reported as
// false without an error; an error means cargo could not run at all.
func (it *BuildSystemRepository) RunTests(
	ctx context.Context, pkg *entities.Package, isolatedDir string,
) (bool, error) {
	args := append([]string{"test", "--package", pkg.Name}, it.settings.TestArgs...)
	output, err := it.run(ctx, isolatedDir, args)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Errorf("Tests for %s failed:\n%s", pkg.Name, output)
			return false, nil
		}
		return false, fmt.Errorf("failed to run cargo test: %w", err)
	}
	logger.Debugf("cargo test output:\n%s", output)
	return true, nil
}

// Publish runs `cargo publish` for the package.
func (it *BuildSystemRepository) Publish(
	ctx context.Context, pkg *entities.Package, isolatedDir string, dryRun bool,
) (repositories.PublishStatus, error) {
	args := []string{"publish", "--package", pkg.Name}
	if it.settings.Registry != "" {
		args = append(args, "--registry", it.settings.Registry)
	}
	if dryRun {
		args = append(args, "--dry-run")
	}
	args = append(args, it.settings.PublishArgs...)

	output, err := it.run(ctx, isolatedDir, args)
	if err == nil {
		logger.Infof("Published %s v%s", pkg.Name, pkg.Version)
		return repositories.Published, nil
	}
	if entities.IsAlreadyPublishedMessage(output) {
		return repositories.AlreadyPublished, nil
	}
	return repositories.PublishFailed, fmt.Errorf("cargo publish failed: %w\nOutput:\n%s", err, output)
}

func (it *BuildSystemRepository) run(ctx context.Context, dir string, args []string) (string, error) {
	logger.Debugf("Running %s %s in %s", it.settings.Binary, strings.Join(args, " "), dir)

	cmd := exec.CommandContext(ctx, it.settings.Binary, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if it.settings.RegistryToken != "" {
		cmd.Env = append(cmd.Env, entities.RegistryTokenEnv(it.settings.Registry)+"="+it.settings.RegistryToken)
	}

	output, err := cmd.CombinedOutput()
	return string(output), err
}

func loadPackage(
	dir string, workspaceVersion *semver.Version, shared map[string]dependencySpec,
) (*entities.Package, error) {
	manifestPath := filepath.Join(dir, ManifestFileName)
	parsed, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if parsed.Package == nil || parsed.Package.Name == "" {
		return nil, fmt.Errorf("manifest %s has no [package] name", manifestPath)
	}

	var version *semver.Version
	switch {
	case parsed.Package.inheritsVersion():
		if workspaceVersion == nil {
			return nil, fmt.Errorf("package %s inherits a version the workspace does not declare", parsed.Package.Name)
		}
		version = workspaceVersion
	case parsed.Package.versionString() != "":
		version, err = semver.StrictNewVersion(parsed.Package.versionString())
		if err != nil {
			return nil, fmt.Errorf("invalid version of package %s: %w", parsed.Package.Name, err)
		}
	default:
		return nil, fmt.Errorf("package %s declares no version", parsed.Package.Name)
	}

	return &entities.Package{
		Name:         parsed.Package.Name,
		Version:      version,
		Dir:          dir,
		ManifestPath: manifestPath,
		Dependencies: collectDependencies(parsed, shared),
	}, nil
}

// collectDependencies merges every dependency table, first declaration wins.
func collectDependencies(parsed *manifest, shared map[string]dependencySpec) []entities.Dependency {
	seen := make(map[string]bool)
	var deps []entities.Dependency
	for _, table := range []map[string]dependencySpec{
		parsed.Dependencies, parsed.BuildDependencies, parsed.DevDependencies,
	} {
		keys := make([]string, 0, len(table))
		for key := range table {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			spec := table[key]
			inherited := false
			if spec.Workspace {
				if entry, ok := shared[key]; ok {
					spec = entry
					inherited = true
				}
			}
			name := key
			if spec.Package != "" {
				name = spec.Package
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			dep := entities.Dependency{
				Name:      name,
				Requested: spec.Version,
				Path:      spec.Path,
				Inherited: inherited,
			}
			if key != name {
				dep.Key = key
			}
			deps = append(deps, dep)
		}
	}
	return deps
}

func expandMembers(root string, members, exclude []string) ([]string, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, entry := range exclude {
		excluded[filepath.Join(root, entry)] = true
	}

	var dirs []string
	for _, pattern := range members {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid workspace member pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if excluded[match] || containsString(dirs, match) {
				continue
			}
			if _, statErr := os.Stat(filepath.Join(match, ManifestFileName)); statErr != nil {
				continue
			}
			dirs = append(dirs, match)
		}
	}
	return dirs, nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
