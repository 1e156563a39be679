// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package cmd implements the winchctl command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/config"
	"github.com/openwinch/winchctl/internal/fleet"
	"github.com/openwinch/winchctl/internal/store"
)

var (
	cfgFile string
	cfg     config.Config
	logger  zerolog.Logger
	manager *fleet.Manager
	st      *store.Store

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket gateway flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	statePath string
	logLevel  string
	verbose   bool
	speed     int
	target    string
)

var rootCmd = &cobra.Command{
	Use:   "winchctl",
	Short: "MyLifter winch controller",
	Long: `Winchctl - control MyLifter motorized winches from the command line.

Up to four winches are managed at once, addressed by numeric ID (1-4) or
by named group. Pairing captures the device passkey after a button press;
credentials and calibration are stored per user and reused on every run.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]   (BLE bridge module)
  WebSocket: --url wss://host [--username user]     (BLE gateway)

For WebSocket authentication, the password is read from the WINCHCTL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: per-user config.toml)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket gateway flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "Gateway URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "State file path (default: per-user state.cbor)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")
}

// setup resolves configuration (defaults, then file, then flags), builds
// the logger and loads the stored fleet.
func setup(cmd *cobra.Command) error {
	cfg = config.Default()

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	if path != "" && config.FileExists(path) {
		fc, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		if err := config.Apply(&cfg, fc); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return fmt.Errorf("config file %s not found", cfgFile)
	}

	// Flags override the file
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Transport = config.TransportSerial
		cfg.SerialDevice = portName
	}
	if flags.Changed("baud") {
		cfg.SerialBaud = baudRate
	}
	if flags.Changed("url") {
		cfg.Transport = config.TransportWS
		cfg.GatewayURL = wsURL
	}
	if flags.Changed("username") {
		cfg.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		cfg.SkipSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("state") {
		cfg.StatePath = statePath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if cfg.StatePath == "" {
		cfg.StatePath = store.DefaultPath()
	}
	st = store.New(cfg.StatePath)

	factory, err := transportFactory()
	if err != nil {
		return err
	}
	manager = fleet.NewManager(factory, cfg.Session, logger)
	return loadFleet()
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if manager != nil {
			manager.DisconnectAll()
		}
	}()
	return rootCmd.Execute()
}
