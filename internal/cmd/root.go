// Package cmd implements the pjmsign command-line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/signlab/pjmsign/internal/config"
)

var cfgFile string

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pjmsign",
		Short: "Static Polish Sign Language recognizer",
		Long: `pjmsign recognizes static Polish Sign Language gestures in images.
It extracts hand and upper-body landmarks, converts them to pairwise
distance features and classifies them with a trained feed-forward network.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")

	rootCmd.AddCommand(
		trainCommand(),
		predictCommand(),
		watchCommand(),
		datasetCommand(),
		runsCommand(),
	)

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return RootCommand().Execute()
}

// loadSettings reads the configuration for a command invocation.
func loadSettings() (*config.Settings, error) {
	return config.Load(cfgFile)
}
