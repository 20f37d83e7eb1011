package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/wsrelease/internal"
	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "wsrelease",
		Short: "Release packages of a multi-package workspace",
		Long: `Release one package of a workspace whose members depend on each other
by version. Dependants are bumped along, verified in an isolated copy of
the repository and published in dependency order, with every manifest
restored when anything fails.

Usage:
  wsrelease release               Release a changed package interactively
  wsrelease update-paths          Link members to each other by local path`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().String("cache-dir", "",
		"Directory of the isolated copy (default: <repository>-cache next to it)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")
	cmd.PersistentFlags().StringP("directory", "C", ".",
		"Workspace directory")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, arguments []string) error {
				return ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		ctrl.AddFlags(subCmd)

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := injectAppContext()
	if err != nil {
		logger.Fatalf("Error starting 'wsrelease': %s", err)
	}
	cobraRoot := buildRootCommand()
	addSubcommands(cobraRoot, app)

	if err := cobraRoot.ExecuteContext(ctx); err != nil {
		if errors.Is(err, entities.ErrUserAbort) {
			return
		}
		stop()
		logger.Fatalf("Error executing 'wsrelease': %s", err)
	}
}
