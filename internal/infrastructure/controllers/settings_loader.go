package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// loadSettings reads the persistent root flags and the configuration file.
// Running without any configuration file is allowed.
func loadSettings(cmd *cobra.Command) (*entities.Settings, string, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	directory, _ := cmd.Flags().GetString("directory")

	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	if configPath == "" {
		found, err := entities.FindConfigFile(directory)
		if err != nil {
			logger.Debugf("No config file found, using defaults: %v", err)
		} else {
			configPath = found
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
	}

	settings, err := entities.NewSettings(configPath)
	if err != nil {
		return nil, "", err
	}
	if cacheDir != "" {
		settings.CacheDir = cacheDir
	}
	return settings, directory, nil
}
