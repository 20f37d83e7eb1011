package repositories

import (
	"context"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// SourceControlRepository abstracts the version control system holding the workspace.
type SourceControlRepository interface {
	// Root returns the absolute path of the working tree.
	Root() string

	// RelPath converts an absolute path into a slash-separated path relative to Root.
	RelPath(path string) string

	// Diff returns the pending changes below the package directory. Results are
	// cached per package name for the lifetime of the repository.
	Diff(ctx context.Context, pkg *entities.Package) (*entities.Diff, error)

	// GetContents returns the content of a file at the given revision ("HEAD", a branch, a hash).
	GetContents(ref, relPath string) ([]byte, error)

	// HeadBranch returns the short name of the checked out branch.
	HeadBranch() (string, error)

	// NewCommitBuilder starts a new commit on top of the current tip.
	NewCommitBuilder() (CommitBuilder, error)

	// SetRef points the named reference at the current tip.
	SetRef(name string) error

	// DeleteRef removes the named reference from the local repository.
	DeleteRef(name string) error

	// Tags returns the short names of every tag.
	Tags() ([]string, error)

	// Push sends the given references to the remote.
	Push(ctx context.Context, remote string, refs []string) error

	// PrepareIsolatedCopy makes dir a clean clone of the repository at branch,
	// fast-forwarding an existing clone. A diverged clone is a merge conflict.
	PrepareIsolatedCopy(ctx context.Context, dir, branch string) error
}

// CommitBuilder stages paths and produces exactly one commit. Builders are
// used one after another, never concurrently.
type CommitBuilder interface {
	// AddPath stages the current content of an existing file.
	AddPath(relPath string) error

	// RemovePath stages the removal of a path that no longer exists on disk.
	RemovePath(relPath string) error

	// Staged returns every path staged so far.
	Staged() []string

	// Commit records the staged paths in a commit parented on the current tip
	// and advances the checked out branch. It returns the commit id.
	Commit(message string) (string, error)

	// Reset returns the staged index entries to their HEAD content.
	Reset() error
}
