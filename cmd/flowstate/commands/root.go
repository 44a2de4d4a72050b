package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowstate/flowstate/pkg/config"
	"github.com/flowstate/flowstate/pkg/handlers"
	"github.com/flowstate/flowstate/pkg/telemetry"
	"github.com/flowstate/flowstate/pkg/version"
	"github.com/flowstate/flowstate/pkg/wire"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command.
func Execute(ctx context.Context, commit, buildDate string) error {
	rootCmd := newRootCommand(commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowstate",
		Short: "flowstate - task run state serialization toolkit",
		Long: `flowstate inspects, converts and stores serialized task run states.

States cross process and storage boundaries as versioned wire objects; this
tool reads and writes them with the same protocol the engine uses, including
pluggable result handlers for opaque payloads.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newRewrapCommand())
	rootCmd.AddCommand(newStoreCommand())

	return rootCmd
}

// loadConfig returns the configuration from --config, or defaults when no
// file was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newLogger builds the CLI logger from config and the --verbose flag.
func newLogger(cfg *config.Config) (*telemetry.Logger, error) {
	logging := cfg.Logging
	if verbose {
		logging.Level = "debug"
	}
	return telemetry.NewLogger(logging)
}

// handlerOptions builds the wire options for the configured result handler.
func handlerOptions(cfg *config.Config, log *telemetry.Logger) ([]wire.Option, error) {
	h, err := handlers.ForName(cfg.Results.Handler, cfg.Results.Dir, log)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	return []wire.Option{wire.WithResultHandler(h)}, nil
}
