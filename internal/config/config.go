// Package config loads runtime configuration from flags and environment
// variables. Every tunable threshold is carried in the Config value and
// passed explicitly into the extraction pipeline, so concurrent page tasks
// can never observe each other's tuning changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeCLI   = "cli"
	ModeStdio = "stdio"

	// Default values
	DefaultPages     = "1"
	DefaultMethod    = "lattice"
	DefaultFormat    = "json"
	DefaultLogLevel  = "info"
	DefaultTolerance = 2.0
	DefaultMinLine   = 3.0
)

// Config holds all configuration for the table extraction tool.
type Config struct {
	// Execution
	Mode     string // "cli" for one-shot extraction, "stdio" for the MCP server
	Input    string // geometry feed path (.json) or PDF path (.pdf)
	Output   string // output file path; empty writes to stdout
	Format   string // "json" or "csv"
	LogLevel string

	// Extraction
	Pages    string // page selector expression
	Method   string // "lattice" or "stream"
	Parallel bool
	Fallback bool
	Workers  int

	// Thresholds
	Tolerance     float64 // coordinate snap/intersection tolerance
	MinLineLength float64 // minimum ruling-segment length
	RowGapFactor  float64 // stream row-band gap, ×median text height
	ColGapFactor  float64 // stream column-edge gap, ×median text height

	// Application
	Version    string
	ServerName string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:          ModeCLI,
		Format:        DefaultFormat,
		LogLevel:      DefaultLogLevel,
		Pages:         DefaultPages,
		Method:        DefaultMethod,
		Fallback:      true,
		Tolerance:     DefaultTolerance,
		MinLineLength: DefaultMinLine,
		RowGapFactor:  0.5,
		ColGapFactor:  1.0,
		Version:       "1.0.0",
		ServerName:    "structable",
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.Input != "" {
		if expanded, err := filepath.Abs(cfg.Input); err == nil {
			cfg.Input = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("STRUCTABLE")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("input", cfg.Input)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("format", cfg.Format)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("pages", cfg.Pages)
	viper.SetDefault("method", cfg.Method)
	viper.SetDefault("parallel", cfg.Parallel)
	viper.SetDefault("fallback", cfg.Fallback)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("tolerance", cfg.Tolerance)
	viper.SetDefault("minlinelength", cfg.MinLineLength)
	viper.SetDefault("rowgap", cfg.RowGapFactor)
	viper.SetDefault("colgap", cfg.ColGapFactor)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' for one-shot extraction, 'stdio' for the MCP server")
	pflag.String("input", cfg.Input, "Geometry feed (.json) or PDF file (.pdf) to extract from")
	pflag.String("output", cfg.Output, "Output file path (default: stdout)")
	pflag.String("format", cfg.Format, "Output format: json or csv")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("pages", cfg.Pages, "Pages to extract: '1', '1,3-5', '2-end' or 'all'")
	pflag.String("method", cfg.Method, "Structure detection method: lattice or stream")
	pflag.Bool("parallel", cfg.Parallel, "Process pages in parallel")
	pflag.Bool("fallback", cfg.Fallback, "Fall back to stream when lattice finds too few ruling lines")
	pflag.Int("workers", cfg.Workers, "Worker count for parallel processing (0 = one per CPU)")
	pflag.Float64("tolerance", cfg.Tolerance, "Coordinate tolerance in page units")
	pflag.Float64("minlinelength", cfg.MinLineLength, "Minimum ruling-segment length; shorter segments are noise")
	pflag.Float64("rowgap", cfg.RowGapFactor, "Stream row-gap threshold as a factor of median text height")
	pflag.Float64("colgap", cfg.ColGapFactor, "Stream column-gap threshold as a factor of median text height")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "input", "output", "format", "loglevel",
		"pages", "method", "parallel", "fallback", "workers",
		"tolerance", "minlinelength", "rowgap", "colgap",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nstructable - recover table structure from document page geometry\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input=page.json --pages=all                 # lattice over a geometry feed\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=report.pdf --method=stream --pages=1-3\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=page.json --parallel --format=csv --output=tables.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio                                  # serve extraction over MCP\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  STRUCTABLE_MODE       Run mode\n")
		fmt.Fprintf(os.Stderr, "  STRUCTABLE_INPUT      Input path\n")
		fmt.Fprintf(os.Stderr, "  STRUCTABLE_PAGES      Page selector\n")
		fmt.Fprintf(os.Stderr, "  STRUCTABLE_METHOD     Detection method\n")
		fmt.Fprintf(os.Stderr, "  STRUCTABLE_LOGLEVEL   Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Input = viper.GetString("input")
	cfg.Output = viper.GetString("output")
	cfg.Format = viper.GetString("format")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.Pages = viper.GetString("pages")
	cfg.Method = viper.GetString("method")
	cfg.Parallel = viper.GetBool("parallel")
	cfg.Fallback = viper.GetBool("fallback")
	cfg.Workers = viper.GetInt("workers")
	cfg.Tolerance = viper.GetFloat64("tolerance")
	cfg.MinLineLength = viper.GetFloat64("minlinelength")
	cfg.RowGapFactor = viper.GetFloat64("rowgap")
	cfg.ColGapFactor = viper.GetFloat64("colgap")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio {
		return errors.New("mode must be either 'cli' or 'stdio'")
	}

	if c.Mode == ModeCLI && c.Input == "" {
		return errors.New("input path is required in cli mode")
	}

	if c.Method != "lattice" && c.Method != "stream" {
		return fmt.Errorf("invalid method: %s (must be lattice or stream)", c.Method)
	}

	if c.Format != "json" && c.Format != "csv" {
		return fmt.Errorf("invalid format: %s (must be json or csv)", c.Format)
	}

	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if c.Tolerance <= 0 {
		return errors.New("tolerance must be positive")
	}
	if c.MinLineLength < 0 {
		return errors.New("minimum line length cannot be negative")
	}
	if c.RowGapFactor <= 0 || c.ColGapFactor <= 0 {
		return errors.New("gap factors must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsStdioMode returns true if the tool should serve MCP over stdio.
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Input: %s, Pages: %s, Method: %s, Parallel: %t, Fallback: %t}",
		c.Mode, c.Input, c.Pages, c.Method, c.Parallel, c.Fallback)
}
