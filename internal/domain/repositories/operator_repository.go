package repositories

import (
	"context"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// OperatorRepository is the interactive operator. A nil selection means the
// operator selected nothing.
type OperatorRepository interface {
	// SelectPackage asks for one package among the candidates.
	SelectPackage(ctx context.Context, prompt string, candidates []*entities.Package) (*entities.Package, error)

	// SelectUpdate asks for the update kind of the package.
	SelectUpdate(ctx context.Context, pkg *entities.Package) (*entities.Update, error)

	// SelectSubset asks for any number of packages among the candidates.
	SelectSubset(
		ctx context.Context, prompt string, candidates []*entities.Package, preselect bool,
	) ([]*entities.Package, error)

	// Confirm asks a yes/no question. Cancelling the prompt returns entities.ErrUserAbort.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// PromptText asks for a line of free text.
	PromptText(ctx context.Context, prompt string) (string, error)

	// Show displays a titled block of text.
	Show(title, body string)
}
