package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/wsrelease/internal/domain/commands"
	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// ReleaseController handles the "release" subcommand.
type ReleaseController struct {
	command commands.Release
}

// NewReleaseController creates a new ReleaseController.
func NewReleaseController(command commands.Release) *ReleaseController {
	return &ReleaseController{command: command}
}

// GetBind returns the Cobra command metadata for the release controller.
func (it *ReleaseController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "release",
		Short: "Release a changed package and its dependants",
		Long: `Release one changed package of the workspace.

You pick the package and the kind of update, then the dependants to fold
into the release commit and the dependants to bump in a follow-up commit.
Manifests are bumped through previews, tests run in an isolated copy of the
repository, packages are published in dependency order and the release is
committed, tagged and pushed. Any failure before the commits restores every
manifest.`,
	}
}

// Execute runs one release.
func (it *ReleaseController) Execute(cmd *cobra.Command, _ []string) error {
	settings, directory, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	skipTests, _ := cmd.Flags().GetBool("skip-tests")
	noPublish, _ := cmd.Flags().GetBool("no-publish")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return it.command.Execute(cmd.Context(), settings, commands.ReleaseOptions{
		Dir:       directory,
		SkipTests: skipTests,
		NoPublish: noPublish,
		DryRun:    dryRun,
	})
}

// AddFlags adds the release-specific flags to the given Cobra command.
func (it *ReleaseController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("skip-tests", false, "Do not run the tests in the isolated copy")
	cmd.Flags().Bool("no-publish", false, "Do not publish to the registry")
	cmd.Flags().Bool("dry-run", false, "Verify and dry-run publish without committing or pushing")
}
