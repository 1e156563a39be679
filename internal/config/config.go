// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package config holds the controller configuration: which transport
// reaches the winches, where state is stored, and the session timing
// knobs. Values come from a TOML file overlaid by command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openwinch/winchctl/internal/session"
)

// Transport selects how winches are reached.
const (
	TransportSerial = "serial"
	TransportWS     = "ws"
)

// Config is the resolved controller configuration.
type Config struct {
	Transport string

	// Serial bridge settings
	SerialDevice string
	SerialBaud   int

	// WebSocket gateway settings
	GatewayURL    string
	Username      string
	Password      string
	SkipSSLVerify bool

	StatePath    string
	LogLevel     string
	DefaultSpeed uint8

	// PairingTimeout bounds the wait for the pairing button press.
	PairingTimeout time.Duration

	Session session.Config
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		Transport:      TransportSerial,
		SerialDevice:   "/dev/ttyUSB0",
		SerialBaud:     115200,
		LogLevel:       "info",
		DefaultSpeed:   100,
		PairingTimeout: 60 * time.Second,
		Session:        session.DefaultConfig(),
	}
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportSerial:
		if c.SerialDevice == "" {
			return fmt.Errorf("serial transport needs a device")
		}
		if c.SerialBaud <= 0 {
			return fmt.Errorf("serial baud rate must be positive")
		}
	case TransportWS:
		if c.GatewayURL == "" {
			return fmt.Errorf("ws transport needs a gateway url")
		}
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportSerial, TransportWS)
	}

	if c.DefaultSpeed == 0 || c.DefaultSpeed > 100 {
		return fmt.Errorf("default speed must be 1..100, got %d", c.DefaultSpeed)
	}
	if c.Session.IdleCadence <= 0 || c.Session.ActiveCadence <= 0 {
		return fmt.Errorf("keep-alive cadences must be positive")
	}
	if c.Session.ActiveCadence > c.Session.IdleCadence {
		return fmt.Errorf("active cadence must not exceed idle cadence")
	}
	if c.Session.ResponseTimeout <= 0 {
		return fmt.Errorf("response timeout must be positive")
	}
	if c.Session.SyncErrorLimit < 1 {
		return fmt.Errorf("sync error limit must be at least 1")
	}
	if c.PairingTimeout <= 0 {
		return fmt.Errorf("pairing timeout must be positive")
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "winchctl", "config.toml")
}

// FileExists reports whether a config file is present at the path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseDuration(field, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
