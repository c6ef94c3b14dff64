// =============================================================================
// Expensight - Root Command
// =============================================================================
//
// The root command carries the global flags (--config, --verbose), loads the
// YAML configuration, and builds the shared logger. Subcommands:
//
//   expensight run      - one full pipeline run with a console summary
//   expensight serve    - start the HTTP front-end
//   expensight version  - build information
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/expensight/expensight/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cfgFile is the path to the configuration file, set by --config.
var cfgFile string

// verbose forces debug-level logging regardless of the configured level.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "expensight",
	Short: "Expensight - clean, analyze, and report on household expenses",
	Long: `Expensight ingests a tabular household expense dataset (XLSX or CSV),
validates and deduplicates it, computes descriptive statistics and groupings,
renders charts, and exports a multi-sheet XLSX report with the charts embedded.

Example Usage:
  expensight run                          # run the pipeline with config.yaml
  expensight run --input expenses.csv     # override the input table
  expensight serve                        # start the interactive front-end`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// Best effort: a .env next to the binary may override EXPENSIGHT_ADDR.
		_ = godotenv.Load()
	})

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig reads the configuration file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the shared structured logger from the configured level.
func newLogger(cfg *config.Config) *log.Logger {
	level := log.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = log.DebugLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "expensight",
	})
}
