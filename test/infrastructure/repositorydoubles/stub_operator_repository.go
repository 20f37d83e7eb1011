//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// StubOperatorRepository answers prompts from scripted values. Once a script
// runs out, subsets select every candidate, confirmations decline and texts are empty.
type StubOperatorRepository struct {
	PackageName    string // empty selects nothing
	Update         *entities.Update
	SubsetAnswers  [][]string // package names per SelectSubset call
	ConfirmAnswers []bool
	TextAnswers    []string

	SubsetPrompts  []string
	ConfirmPrompts []string
	Shown          []string
	SubsetErr      error
	ConfirmErr     error
}

var _ repositories.OperatorRepository = (*StubOperatorRepository)(nil)

func (s *StubOperatorRepository) SelectPackage(
	_ context.Context, _ string, candidates []*entities.Package,
) (*entities.Package, error) {
	for _, pkg := range candidates {
		if pkg.Name == s.PackageName {
			return pkg, nil
		}
	}
	return nil, nil
}

func (s *StubOperatorRepository) SelectUpdate(_ context.Context, _ *entities.Package) (*entities.Update, error) {
	return s.Update, nil
}

func (s *StubOperatorRepository) SelectSubset(
	_ context.Context, prompt string, candidates []*entities.Package, _ bool,
) ([]*entities.Package, error) {
	s.SubsetPrompts = append(s.SubsetPrompts, prompt)
	if s.SubsetErr != nil {
		return nil, s.SubsetErr
	}
	if len(s.SubsetAnswers) == 0 {
		return candidates, nil
	}
	names := s.SubsetAnswers[0]
	s.SubsetAnswers = s.SubsetAnswers[1:]

	var subset []*entities.Package
	for _, pkg := range candidates {
		for _, name := range names {
			if pkg.Name == name {
				subset = append(subset, pkg)
			}
		}
	}
	return subset, nil
}

func (s *StubOperatorRepository) Confirm(_ context.Context, prompt string) (bool, error) {
	s.ConfirmPrompts = append(s.ConfirmPrompts, prompt)
	if s.ConfirmErr != nil {
		return false, s.ConfirmErr
	}
	if len(s.ConfirmAnswers) == 0 {
		return false, nil
	}
	answer := s.ConfirmAnswers[0]
	s.ConfirmAnswers = s.ConfirmAnswers[1:]
	return answer, nil
}

func (s *StubOperatorRepository) PromptText(_ context.Context, _ string) (string, error) {
	if len(s.TextAnswers) == 0 {
		return "", nil
	}
	answer := s.TextAnswers[0]
	s.TextAnswers = s.TextAnswers[1:]
	return answer, nil
}

func (s *StubOperatorRepository) Show(title, _ string) {
	s.Shown = append(s.Shown, title)
}
