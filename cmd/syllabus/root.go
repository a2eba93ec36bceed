package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/syllabus/internal/cli"
	"github.com/aretw0/syllabus/internal/config"
	"github.com/aretw0/syllabus/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "Syllabus is an authoring core for structured courses",
	Long: `Syllabus edits courses made of ordered modules and lessons, keeps drafts
in a memory, file or redis store and publishes finished courses to the course
repository service.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./syllabus.yaml or .syllabus/syllabus.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("store", config.BackendFile, "Draft store backend (memory, file, redis)")
	flags.String("store-path", ".syllabus/drafts", "Directory of the file draft store")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis draft store")
	flags.String("repository-url", "http://localhost:8000/api", "Base URL of the course repository service")
}

// loadConfig reads the configuration with the command's flags bound.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

// loadApp wires the components for commands that touch drafts.
func loadApp(ctx context.Context, cmd *cobra.Command, opts ...cli.AppOption) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	app, err := cli.NewApp(ctx, cfg, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing syllabus: %w", err)
	}
	return app, nil
}
