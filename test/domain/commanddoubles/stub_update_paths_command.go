//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/wsrelease/internal/domain/commands"
	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// StubUpdatePathsCommand is a stub implementation of commands.UpdatePaths.
type StubUpdatePathsCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.UpdatePathsOptions
}

var _ commands.UpdatePaths = (*StubUpdatePathsCommand)(nil)

func (s *StubUpdatePathsCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.UpdatePathsOptions,
) error {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteErr
}
