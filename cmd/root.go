// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "scopereader",
	Short: "Fluke ScopeMeter remote control client",
	Long: `Scopereader - A CLI tool for reading data out of Fluke ScopeMeter oscilloscopes.

Downloads screenshots, waveforms and measurements over the instrument's
optical serial cable, and can identify the instrument and set its clock.

Connection modes:
  Serial:    --port /dev/ttyUSB0
  WebSocket: --url ws://host/path [--username user]

The link always starts at 1200 baud and is switched to 19200 baud before
any data is transferred.

For WebSocket authentication, the password is read from the
SCOPEREADER_PASSWORD environment variable, or prompted interactively if not
set. The --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := DefaultConfig()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./scopereader.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every protocol exchange")

	// Serial connection flags
	rootCmd.PersistentFlags().StringP("port", "p", defaults.Port, "Serial port device")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringP("url", "u", defaults.URL, "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().String("username", defaults.Username, "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().Bool("no-ssl-verify", defaults.NoSSLVerify, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().Duration("timeout", defaults.Timeout, "Read timeout between bytes")
	rootCmd.PersistentFlags().StringP("output-dir", "o", defaults.OutputDir, "Directory for downloaded files")

	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	viper.BindPFlag("no_ssl_verify", rootCmd.PersistentFlags().Lookup("no-ssl-verify"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	viper.SetDefault("logbook", defaults.Logbook)
	viper.SetDefault("archive", defaults.Archive)
	viper.SetDefault("log.level", defaults.Log.Level)
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	viper.SetConfigFile(cfgFile)
	viper.SetEnvPrefix("SCOPEREADER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; flags and environment still apply
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setupLogging applies the configured log level before any command runs
func setupLogging(cmd *cobra.Command, args []string) error {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
