package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// CommitBuilder stages paths in the go-git index and commits them once.
type CommitBuilder struct {
	worktree  *gogit.Worktree
	staged    []string
	committed bool
}

var _ repositories.CommitBuilder = (*CommitBuilder)(nil)

func newCommitBuilder(worktree *gogit.Worktree) *CommitBuilder {
	return &CommitBuilder{worktree: worktree}
}

func (it *CommitBuilder) AddPath(relPath string) error {
	if _, err := it.worktree.Add(relPath); err != nil {
		return &entities.RepositoryError{Op: "stage " + relPath, Cause: err}
	}
	logger.Debugf("Staged %s", relPath)
	it.staged = append(it.staged, relPath)
	return nil
}

func (it *CommitBuilder) RemovePath(relPath string) error {
	if _, err := it.worktree.Remove(relPath); err != nil {
		return &entities.RepositoryError{Op: "stage removal of " + relPath, Cause: err}
	}
	logger.Debugf("Staged removal of %s", relPath)
	it.staged = append(it.staged, relPath)
	return nil
}

func (it *CommitBuilder) Staged() []string {
	return append([]string(nil), it.staged...)
}

// Commit uses the author configured in the repository (or the global git config).
func (it *CommitBuilder) Commit(message string) (string, error) {
	if it.committed {
		return "", &entities.RepositoryError{Op: "commit", Cause: errors.New("commit builder already used")}
	}
	if len(it.staged) == 0 {
		return "", &entities.RepositoryError{Op: "commit", Cause: errors.New("nothing staged")}
	}

	hash, err := it.worktree.Commit(message, &gogit.CommitOptions{})
	if err != nil {
		return "", &entities.RepositoryError{Op: "commit", Cause: err}
	}
	it.committed = true
	logger.Infof("Created commit %s", hash.String()[:7])
	return hash.String(), nil
}

func (it *CommitBuilder) Reset() error {
	if len(it.staged) == 0 || it.committed {
		return nil
	}
	err := it.worktree.Reset(&gogit.ResetOptions{
		Mode:  gogit.MixedReset,
		Files: it.staged,
	})
	if err != nil {
		return &entities.RepositoryError{Op: "reset index", Cause: fmt.Errorf("%v: %w", it.staged, err)}
	}
	it.staged = nil
	return nil
}
