package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// OperatorRepository asks the operator through bubbletea prompts on the terminal.
type OperatorRepository struct {
	input  io.Reader
	output io.Writer
}

var _ repositories.OperatorRepository = (*OperatorRepository)(nil)

// NewOperatorRepository creates an operator bound to the process terminal.
func NewOperatorRepository() *OperatorRepository {
	return &OperatorRepository{input: os.Stdin, output: os.Stdout}
}

func (it *OperatorRepository) SelectPackage(
	ctx context.Context, prompt string, candidates []*entities.Package,
) (*entities.Package, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	result, err := it.run(ctx, newListModel(prompt, packageOptions(candidates), false, false))
	if err != nil {
		return nil, err
	}
	model := result.(listModel)
	if model.aborted || model.selected < 0 {
		return nil, nil
	}
	return candidates[model.selected], nil
}

func (it *OperatorRepository) SelectUpdate(ctx context.Context, pkg *entities.Package) (*entities.Update, error) {
	options := make([]option, 0, len(entities.Updates))
	for _, update := range entities.Updates {
		options = append(options, option{label: fmt.Sprintf("%-6s %s", update.Name(), update.Transition(pkg.Version))})
	}

	title := fmt.Sprintf("Update kind for %s", pkg.Name)
	result, err := it.run(ctx, newListModel(title, options, false, false))
	if err != nil {
		return nil, err
	}
	model := result.(listModel)
	if model.aborted || model.selected < 0 {
		return nil, nil
	}
	update := entities.Updates[model.selected]
	return &update, nil
}

func (it *OperatorRepository) SelectSubset(
	ctx context.Context, prompt string, candidates []*entities.Package, preselect bool,
) ([]*entities.Package, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	result, err := it.run(ctx, newListModel(prompt, packageOptions(candidates), true, preselect))
	if err != nil {
		return nil, err
	}
	model := result.(listModel)
	if model.aborted {
		return nil, entities.ErrUserAbort
	}
	subset := make([]*entities.Package, 0, len(candidates))
	for _, idx := range model.chosen() {
		subset = append(subset, candidates[idx])
	}
	return subset, nil
}

func (it *OperatorRepository) Confirm(ctx context.Context, prompt string) (bool, error) {
	result, err := it.run(ctx, confirmModel{title: prompt})
	if err != nil {
		return false, err
	}
	model := result.(confirmModel)
	if model.aborted {
		return false, entities.ErrUserAbort
	}
	return model.value, nil
}

func (it *OperatorRepository) PromptText(ctx context.Context, prompt string) (string, error) {
	result, err := it.run(ctx, newInputModel(prompt))
	if err != nil {
		return "", err
	}
	model := result.(inputModel)
	if model.aborted {
		return "", entities.ErrUserAbort
	}
	return strings.TrimSpace(model.textInput.Value()), nil
}

func (it *OperatorRepository) Show(title, body string) {
	_, _ = fmt.Fprintln(it.output, titleStyle.Render(title))
	_, _ = fmt.Fprintln(it.output, body)
}

func (it *OperatorRepository) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	result, err := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithInput(it.input),
		tea.WithOutput(it.output),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("operator prompt failed: %w", err)
	}
	return result, nil
}

func packageOptions(candidates []*entities.Package) []option {
	options := make([]option, 0, len(candidates))
	for _, pkg := range candidates {
		options = append(options, option{label: pkg.Summary(), changed: pkg.IsChanged()})
	}
	return options
}
