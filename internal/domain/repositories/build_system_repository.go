package repositories

import (
	"context"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// PublishStatus is the outcome of a single publish call.
type PublishStatus int

const (
	// PublishFailed means the registry rejected the package.
	PublishFailed PublishStatus = iota
	// Published means the version was uploaded.
	Published
	// AlreadyPublished means the exact version already exists in the registry.
	AlreadyPublished
)

// BuildSystemRepository abstracts the workspace's build, test and publish mechanics.
type BuildSystemRepository interface {
	// Name returns the build system identifier (e.g. "cargo").
	Name() string

	// LoadWorkspace reads the workspace rooted at dir. Diffs are not computed.
	LoadWorkspace(ctx context.Context, dir string) (*entities.Workspace, error)

	// RunTests runs the test suite of the package inside the isolated workspace.
	RunTests(ctx context.Context, pkg *entities.Package, isolatedDir string) (bool, error)

	// Publish uploads the package from the isolated workspace to its registry.
	Publish(ctx context.Context, pkg *entities.Package, isolatedDir string, dryRun bool) (PublishStatus, error)
}
