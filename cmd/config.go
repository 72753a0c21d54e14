// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

// Config represents the complete application configuration
type Config struct {
	Port        string        `yaml:"port" mapstructure:"port"`                   // Serial port device path
	URL         string        `yaml:"url" mapstructure:"url"`                     // WebSocket bridge URL
	Username    string        `yaml:"username" mapstructure:"username"`           // HTTP Basic auth user
	NoSSLVerify bool          `yaml:"no_ssl_verify" mapstructure:"no_ssl_verify"` // Skip TLS verification
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`             // Read timeout between bytes
	OutputDir   string        `yaml:"output_dir" mapstructure:"output_dir"`       // Directory for downloads
	Logbook     string        `yaml:"logbook" mapstructure:"logbook"`             // SQLite file for kept measurements
	Archive     bool          `yaml:"archive" mapstructure:"archive"`             // Also write waveforms as CBOR
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
}

// LogConfig contains logging configuration parameters
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // panic, fatal, error, warn, info, debug, trace
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:   scopemeter.DefaultReadTimeout,
		OutputDir: ".",
		Log: LogConfig{
			Level: "info",
		},
	}
}

// loadConfig merges the config file, environment and flags over the defaults
func loadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// MarshalYAML writes the timeout as a duration string
func (c Config) MarshalYAML() (interface{}, error) {
	return struct {
		Port        string    `yaml:"port"`
		URL         string    `yaml:"url"`
		Username    string    `yaml:"username"`
		NoSSLVerify bool      `yaml:"no_ssl_verify"`
		Timeout     string    `yaml:"timeout"`
		OutputDir   string    `yaml:"output_dir"`
		Logbook     string    `yaml:"logbook"`
		Archive     bool      `yaml:"archive"`
		Log         LogConfig `yaml:"log"`
	}{
		Port:        c.Port,
		URL:         c.URL,
		Username:    c.Username,
		NoSSLVerify: c.NoSSLVerify,
		Timeout:     c.Timeout.String(),
		OutputDir:   c.OutputDir,
		Logbook:     c.Logbook,
		Archive:     c.Archive,
		Log:         c.Log,
	}, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
SCOPEREADER_* environment variables and command line flags.

The output is valid YAML and can be saved as scopereader.yaml.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
