//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// StubBuildSystemRepository implements repositories.BuildSystemRepository with canned answers.
type StubBuildSystemRepository struct {
	// --- LoadWorkspace ---
	Workspace  *entities.Workspace
	Workspaces map[string]*entities.Workspace // by directory, checked before Workspace
	LoadErr    error

	// --- RunTests ---
	TestsFail bool
	TestsErr  error
	TestCalls []TestCall

	// --- Publish ---
	PublishStatuses map[string]repositories.PublishStatus // defaults to Published
	PublishErrs     map[string]error
	PublishCalls    []PublishCall
}

// TestCall records a single invocation of RunTests.
type TestCall struct {
	Package     string
	IsolatedDir string
}

// PublishCall records a single invocation of Publish.
type PublishCall struct {
	Package string
	DryRun  bool
}

var _ repositories.BuildSystemRepository = (*StubBuildSystemRepository)(nil)

func (s *StubBuildSystemRepository) Name() string { return "stub" }

func (s *StubBuildSystemRepository) LoadWorkspace(_ context.Context, dir string) (*entities.Workspace, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if ws, ok := s.Workspaces[dir]; ok {
		return ws, nil
	}
	if s.Workspace == nil {
		return nil, fmt.Errorf("no workspace in %s", dir)
	}
	return s.Workspace, nil
}

func (s *StubBuildSystemRepository) RunTests(
	_ context.Context, pkg *entities.Package, isolatedDir string,
) (bool, error) {
	s.TestCalls = append(s.TestCalls, TestCall{Package: pkg.Name, IsolatedDir: isolatedDir})
	return !s.TestsFail, s.TestsErr
}

func (s *StubBuildSystemRepository) Publish(
	_ context.Context, pkg *entities.Package, _ string, dryRun bool,
) (repositories.PublishStatus, error) {
	s.PublishCalls = append(s.PublishCalls, PublishCall{Package: pkg.Name, DryRun: dryRun})
	if err, ok := s.PublishErrs[pkg.Name]; ok {
		return repositories.PublishFailed, err
	}
	if status, ok := s.PublishStatuses[pkg.Name]; ok {
		return status, nil
	}
	return repositories.Published, nil
}

// PublishedNames returns the package names in publish order.
func (s *StubBuildSystemRepository) PublishedNames() []string {
	names := make([]string, 0, len(s.PublishCalls))
	for _, call := range s.PublishCalls {
		names = append(names, call.Package)
	}
	return names
}
