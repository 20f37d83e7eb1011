//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// SpySourceControlRepository implements repositories.SourceControlRepository as a configurable spy.
type SpySourceControlRepository struct {
	// --- identity ---
	RootDir string
	Branch  string

	// --- Diff / GetContents ---
	Diffs     map[string]*entities.Diff
	Contents  map[string][]byte // HEAD contents by slash-separated relative path
	DiffCalls []string

	// --- commits ---
	Builders  []*SpyCommitBuilder
	CommitErr error

	// --- refs ---
	TagNames       []string
	SetRefCalls    []string
	DeleteRefCalls []string
	PushCalls      []PushCall
	PushErr        error

	// --- isolated copy ---
	PrepareCalls []string
	PrepareErr   error
}

// PushCall records a single invocation of Push.
type PushCall struct {
	Remote string
	Refs   []string
}

var _ repositories.SourceControlRepository = (*SpySourceControlRepository)(nil)

func (s *SpySourceControlRepository) Root() string { return s.RootDir }

func (s *SpySourceControlRepository) RelPath(path string) string {
	rel, err := filepath.Rel(s.RootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s *SpySourceControlRepository) Diff(_ context.Context, pkg *entities.Package) (*entities.Diff, error) {
	s.DiffCalls = append(s.DiffCalls, pkg.Name)
	if diff, ok := s.Diffs[pkg.Name]; ok {
		return diff, nil
	}
	return &entities.Diff{}, nil
}

func (s *SpySourceControlRepository) GetContents(_, relPath string) ([]byte, error) {
	if content, ok := s.Contents[relPath]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("file %s not found at HEAD", relPath)
}

func (s *SpySourceControlRepository) HeadBranch() (string, error) {
	if s.Branch == "" {
		return "main", nil
	}
	return s.Branch, nil
}

func (s *SpySourceControlRepository) NewCommitBuilder() (repositories.CommitBuilder, error) {
	builder := &SpyCommitBuilder{CommitErr: s.CommitErr}
	s.Builders = append(s.Builders, builder)
	return builder, nil
}

func (s *SpySourceControlRepository) SetRef(name string) error {
	s.SetRefCalls = append(s.SetRefCalls, name)
	if tag, ok := strings.CutPrefix(name, "refs/tags/"); ok {
		s.TagNames = append(s.TagNames, tag)
	}
	return nil
}

func (s *SpySourceControlRepository) DeleteRef(name string) error {
	s.DeleteRefCalls = append(s.DeleteRefCalls, name)
	tag := strings.TrimPrefix(name, "refs/tags/")
	kept := s.TagNames[:0]
	for _, existing := range s.TagNames {
		if existing != tag {
			kept = append(kept, existing)
		}
	}
	s.TagNames = kept
	return nil
}

func (s *SpySourceControlRepository) Tags() ([]string, error) {
	return s.TagNames, nil
}

func (s *SpySourceControlRepository) Push(_ context.Context, remote string, refs []string) error {
	s.PushCalls = append(s.PushCalls, PushCall{Remote: remote, Refs: refs})
	return s.PushErr
}

func (s *SpySourceControlRepository) PrepareIsolatedCopy(_ context.Context, dir, _ string) error {
	s.PrepareCalls = append(s.PrepareCalls, dir)
	if s.PrepareErr != nil {
		return s.PrepareErr
	}
	return os.MkdirAll(dir, 0o755)
}

// Committed returns the builders that produced a commit, in order.
func (s *SpySourceControlRepository) Committed() []*SpyCommitBuilder {
	var committed []*SpyCommitBuilder
	for _, builder := range s.Builders {
		if builder.Message != "" {
			committed = append(committed, builder)
		}
	}
	return committed
}

// SpyCommitBuilder implements repositories.CommitBuilder as a spy.
type SpyCommitBuilder struct {
	Added      []string
	Removed    []string
	Message    string
	CommitErr  error
	ResetCalls int
}

var _ repositories.CommitBuilder = (*SpyCommitBuilder)(nil)

func (b *SpyCommitBuilder) AddPath(relPath string) error {
	b.Added = append(b.Added, relPath)
	return nil
}

func (b *SpyCommitBuilder) RemovePath(relPath string) error {
	b.Removed = append(b.Removed, relPath)
	return nil
}

func (b *SpyCommitBuilder) Staged() []string {
	return append(append([]string(nil), b.Added...), b.Removed...)
}

func (b *SpyCommitBuilder) Commit(message string) (string, error) {
	if b.CommitErr != nil {
		return "", b.CommitErr
	}
	b.Message = message
	return "0123456789abcdef", nil
}

func (b *SpyCommitBuilder) Reset() error {
	b.ResetCalls++
	b.Added = nil
	b.Removed = nil
	return nil
}
