package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// SourceControlRepository implements repositories.SourceControlRepository on top of go-git.
type SourceControlRepository struct {
	repo     *gogit.Repository
	worktree *gogit.Worktree
	root     string

	mu     sync.Mutex
	status gogit.Status
	diffs  map[string]*entities.Diff
}

var _ repositories.SourceControlRepository = (*SourceControlRepository)(nil)

// NewSourceControlRepository opens the git repository containing dir.
func NewSourceControlRepository(dir string) (repositories.SourceControlRepository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &entities.RepositoryError{Op: "open", Cause: fmt.Errorf("%s: %w", dir, err)}
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, &entities.RepositoryError{Op: "open", Cause: err}
	}
	root, err := filepath.Abs(worktree.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository root: %w", err)
	}

	return &SourceControlRepository{
		repo:     repo,
		worktree: worktree,
		root:     root,
		diffs:    make(map[string]*entities.Diff),
	}, nil
}

func (it *SourceControlRepository) Root() string {
	return it.root
}

func (it *SourceControlRepository) RelPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(it.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Diff computes the pending changes of the package against HEAD, counting
// both staged and unstaged modifications. The working tree status is read
// once and reused for every package.
func (it *SourceControlRepository) Diff(_ context.Context, pkg *entities.Package) (*entities.Diff, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if cached, ok := it.diffs[pkg.Name]; ok {
		return cached, nil
	}

	if it.status == nil {
		status, err := it.worktree.Status()
		if err != nil {
			return nil, &entities.RepositoryError{Op: "status", Cause: err}
		}
		it.status = status
	}

	prefix := it.RelPath(pkg.Dir)
	diff := &entities.Diff{}
	for _, path := range sortedPaths(it.status) {
		if !underDir(path, prefix) || entities.IsTransactionArtifact(path) {
			continue
		}
		fileStatus := it.status[path]
		if fileStatus.Staging == gogit.Unmodified && fileStatus.Worktree == gogit.Unmodified {
			continue
		}

		before, err := it.headLines(path)
		if err != nil {
			return nil, err
		}
		after, deleted, err := it.worktreeLines(path)
		if err != nil {
			return nil, err
		}

		insertions, deletions := countLineChanges(before, after)
		diff.FilesChanged++
		diff.Insertions += insertions
		diff.Deletions += deletions
		if deleted {
			diff.DeletedFiles = append(diff.DeletedFiles, path)
		} else {
			diff.ChangedFiles = append(diff.ChangedFiles, path)
		}
	}

	logger.Debugf("Diff of %s: %d files, +%d -%d", pkg.Name, diff.FilesChanged, diff.Insertions, diff.Deletions)
	it.diffs[pkg.Name] = diff
	return diff, nil
}

func (it *SourceControlRepository) GetContents(ref, relPath string) ([]byte, error) {
	hash, err := it.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, &entities.RepositoryError{Op: "resolve " + ref, Cause: err}
	}
	commit, err := it.repo.CommitObject(*hash)
	if err != nil {
		return nil, &entities.RepositoryError{Op: "read commit " + ref, Cause: err}
	}
	file, err := commit.File(relPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s at %s: %w", relPath, ref, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", relPath, ref, err)
	}
	return []byte(contents), nil
}

func (it *SourceControlRepository) HeadBranch() (string, error) {
	head, err := it.repo.Head()
	if err != nil {
		return "", &entities.RepositoryError{Op: "read HEAD", Cause: err}
	}
	if !head.Name().IsBranch() {
		return "", &entities.RepositoryError{Op: "read HEAD", Cause: errors.New("HEAD is detached")}
	}
	return head.Name().Short(), nil
}

func (it *SourceControlRepository) NewCommitBuilder() (repositories.CommitBuilder, error) {
	if _, err := it.repo.Head(); err != nil {
		return nil, &entities.RepositoryError{Op: "commit", Cause: fmt.Errorf("no prior commit: %w", err)}
	}
	return newCommitBuilder(it.worktree), nil
}

func (it *SourceControlRepository) SetRef(name string) error {
	head, err := it.repo.Head()
	if err != nil {
		return &entities.RepositoryError{Op: "read HEAD", Cause: err}
	}
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), head.Hash())
	if setErr := it.repo.Storer.SetReference(ref); setErr != nil {
		return &entities.RepositoryError{Op: "set " + name, Cause: setErr}
	}
	logger.Debugf("Pointed %s at %s", name, head.Hash())
	return nil
}

func (it *SourceControlRepository) DeleteRef(name string) error {
	if err := it.repo.Storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		return &entities.RepositoryError{Op: "delete " + name, Cause: err}
	}
	logger.Debugf("Deleted %s", name)
	return nil
}

func (it *SourceControlRepository) Tags() ([]string, error) {
	iter, err := it.repo.Tags()
	if err != nil {
		return nil, &entities.RepositoryError{Op: "list tags", Cause: err}
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, &entities.RepositoryError{Op: "list tags", Cause: err}
	}
	return names, nil
}

func (it *SourceControlRepository) Push(ctx context.Context, remote string, refs []string) error {
	specs := make([]config.RefSpec, 0, len(refs))
	for _, ref := range refs {
		specs = append(specs, config.RefSpec(ref+":"+ref))
	}

	logger.Infof("Pushing %s to %s", strings.Join(refs, ", "), remote)
	err := it.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   specs,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return &entities.RepositoryError{Op: "push", Cause: err}
	}
	return nil
}

// PrepareIsolatedCopy clones the working tree's repository into dir, or resets
// an existing clone, drops untracked files and fast-forwards it to branch.
// Ignored files (build output) survive between runs.
func (it *SourceControlRepository) PrepareIsolatedCopy(ctx context.Context, dir, branch string) error {
	branchRef := plumbing.NewBranchReferenceName(branch)

	if _, err := os.Stat(filepath.Join(dir, gogit.GitDirName)); errors.Is(err, os.ErrNotExist) {
		logger.Infof("Cloning %s into %s", it.root, dir)
		_, cloneErr := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
			URL:           it.root,
			ReferenceName: branchRef,
			SingleBranch:  true,
		})
		if cloneErr != nil {
			return &entities.RepositoryError{Op: "clone isolated copy", Cause: cloneErr}
		}
		return nil
	}

	logger.Infof("Refreshing isolated copy in %s", dir)
	cache, err := gogit.PlainOpen(dir)
	if err != nil {
		return &entities.RepositoryError{Op: "open isolated copy", Cause: err}
	}
	cacheTree, err := cache.Worktree()
	if err != nil {
		return &entities.RepositoryError{Op: "open isolated copy", Cause: err}
	}
	if checkoutErr := cacheTree.Checkout(&gogit.CheckoutOptions{Branch: branchRef, Force: true}); checkoutErr != nil {
		return &entities.RepositoryError{Op: "reset isolated copy", Cause: checkoutErr}
	}
	if cleanErr := cacheTree.Clean(&gogit.CleanOptions{Dir: true}); cleanErr != nil {
		return &entities.RepositoryError{Op: "clean isolated copy", Cause: cleanErr}
	}
	return pull(ctx, cacheTree, gogit.DefaultRemoteName, branch)
}

// pull fast-forwards the checked out branch; a diverged history is a conflict.
func pull(ctx context.Context, worktree *gogit.Worktree, remote, branch string) error {
	err := worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    remote,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Force:         true,
	})
	switch {
	case err == nil, errors.Is(err, gogit.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, gogit.ErrNonFastForwardUpdate):
		return &entities.RepositoryError{
			Op:    "merge conflict",
			Cause: fmt.Errorf("%s diverged from %s/%s, remove the isolated copy to start over: %w", branch, remote, branch, err),
		}
	default:
		return &entities.RepositoryError{Op: "pull", Cause: err}
	}
}

func (it *SourceControlRepository) headLines(path string) ([]string, error) {
	content, err := it.GetContents(plumbing.HEAD.String(), path)
	if err != nil {
		// absent at HEAD: the file is new
		var repoErr *entities.RepositoryError
		if errors.As(err, &repoErr) {
			return nil, err
		}
		return nil, nil
	}
	return splitLines(content), nil
}

func (it *SourceControlRepository) worktreeLines(path string) ([]string, bool, error) {
	content, err := os.ReadFile(filepath.Join(it.root, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, &entities.FilesystemError{Op: "read", Source: path, Cause: err}
	}
	return splitLines(content), false, nil
}

func underDir(path, dir string) bool {
	if dir == "." || dir == "" {
		return true
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}
