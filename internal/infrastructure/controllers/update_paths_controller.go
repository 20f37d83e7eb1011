package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/wsrelease/internal/domain/commands"
	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// UpdatePathsController handles the "update-paths" subcommand.
type UpdatePathsController struct {
	command commands.UpdatePaths
}

// NewUpdatePathsController creates a new UpdatePathsController.
func NewUpdatePathsController(command commands.UpdatePaths) *UpdatePathsController {
	return &UpdatePathsController{command: command}
}

// GetBind returns the Cobra command metadata for the update-paths controller.
func (it *UpdatePathsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update-paths",
		Short: "Link workspace members by local path",
		Long: `Rewrite every dependency between workspace members to carry both
its version and a relative path.

With --dep, dependencies provided by another workspace (for example a git
submodule) are overridden to point at its local checkout; --force-deps also
makes the members require the versions found there.`,
	}
}

// Execute rewrites the workspace manifests.
func (it *UpdatePathsController) Execute(cmd *cobra.Command, _ []string) error {
	settings, directory, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	forceDeps, _ := cmd.Flags().GetBool("force-deps")
	deps, _ := cmd.Flags().GetStringArray("dep")

	return it.command.Execute(cmd.Context(), settings, commands.UpdatePathsOptions{
		Dir:       directory,
		DryRun:    dryRun,
		ForceDeps: forceDeps,
		Deps:      deps,
	})
}

// AddFlags adds the update-paths-specific flags to the given Cobra command.
func (it *UpdatePathsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Only write the preview manifests")
	cmd.Flags().BoolP("force-deps", "f", false, "Require the versions of the --dep workspaces")
	cmd.Flags().StringArrayP("dep", "d", nil, "Directory of another workspace to override dependencies with")
}
