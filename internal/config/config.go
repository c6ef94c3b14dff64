// =============================================================================
// Expensight - Configuration Module
// =============================================================================
//
// Loads the application configuration from a single YAML file. Every option
// has a default, so a missing config file is not an error: the loader falls
// back to defaults and the CLI flags can still override individual paths.
//
// CONFIGURATION FILE (config.yaml):
//   input_file:  ./household_expenses.xlsx
//   output_file: ./cleaned_expenses.xlsx
//   charts_dir:  ./charts
//   log_level:   info
//   listen_addr: :8080
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the global application configuration.
type Config struct {
	// InputFile is the expense table to load (.xlsx or .csv).
	InputFile string `yaml:"input_file"`

	// OutputFile is the destination of the generated report workbook.
	OutputFile string `yaml:"output_file"`

	// ChartsDir is the directory where chart PNGs are written.
	ChartsDir string `yaml:"charts_dir"`

	// LogLevel controls logging verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ListenAddr is the HTTP front-end bind address for the serve command.
	// The EXPENSIGHT_ADDR environment variable takes precedence.
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns a configuration with every option at its default.
func Default() *Config {
	return &Config{
		InputFile:  "./household_expenses.xlsx",
		OutputFile: "./cleaned_expenses.xlsx",
		ChartsDir:  "./charts",
		LogLevel:   "info",
		ListenAddr: ":8080",
	}
}

// Load reads the configuration from path. A missing file yields defaults;
// an unreadable or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills any option left empty in the file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.InputFile == "" {
		cfg.InputFile = def.InputFile
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = def.OutputFile
	}
	if cfg.ChartsDir == "" {
		cfg.ChartsDir = def.ChartsDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
}

// validate rejects values the rest of the system cannot work with.
func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}

// Addr returns the effective listen address, honoring EXPENSIGHT_ADDR.
func (c *Config) Addr() string {
	if addr := os.Getenv("EXPENSIGHT_ADDR"); addr != "" {
		return addr
	}
	return c.ListenAddr
}
