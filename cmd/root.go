package cmd

import (
	"fmt"
	"os"

	"prompt-cms/config"
	"prompt-cms/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "promptcms",
	Short:         "Prompt library CMS",
	Long:          `Prompt library CMS: admin workflows for prompts, categories and tags plus a public catalogue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorw("command failed", "error", err)
		logger.Sync()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger.Sync()
}

// loadConfig reads the configuration and starts the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(cfg.App.LogLevel, !cfg.IsProduction()); err != nil {
		return cfg, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
