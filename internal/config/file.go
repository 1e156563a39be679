// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package config

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with strings for durations, which keeps the
// TOML human-editable ("250ms", "3s"). Zero values mean "not set".
type FileConfig struct {
	Transport string `toml:"transport"`

	Serial struct {
		Device string `toml:"device"`
		Baud   int    `toml:"baud"`
	} `toml:"serial"`

	Gateway struct {
		URL           string `toml:"url"`
		Username      string `toml:"username"`
		Password      string `toml:"password"`
		SkipSSLVerify bool   `toml:"skip_ssl_verify"`
	} `toml:"gateway"`

	StatePath      string `toml:"state_path"`
	LogLevel       string `toml:"log_level"`
	DefaultSpeed   int    `toml:"default_speed"`
	PairingTimeout string `toml:"pairing_timeout"`

	Session struct {
		ResponseTimeout string `toml:"response_timeout"`
		IdleCadence     string `toml:"idle_cadence"`
		ActiveCadence   string `toml:"active_cadence"`
		MinWriteSpacing string `toml:"min_write_spacing"`
		SyncErrorLimit  int    `toml:"sync_error_limit"`
		StallTimeout    string `toml:"stall_timeout"`
	} `toml:"session"`
}

// LoadFile reads and parses a TOML config file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// Apply overlays file values onto cfg. File values win over defaults;
// the caller applies explicitly-set flags afterwards so flags win over
// the file.
func Apply(cfg *Config, fc FileConfig) error {
	if fc.Transport != "" {
		cfg.Transport = fc.Transport
	}
	if fc.Serial.Device != "" {
		cfg.SerialDevice = fc.Serial.Device
	}
	if fc.Serial.Baud > 0 {
		cfg.SerialBaud = fc.Serial.Baud
	}
	if fc.Gateway.URL != "" {
		cfg.GatewayURL = fc.Gateway.URL
	}
	if fc.Gateway.Username != "" {
		cfg.Username = fc.Gateway.Username
	}
	if fc.Gateway.Password != "" {
		cfg.Password = fc.Gateway.Password
	}
	if fc.Gateway.SkipSSLVerify {
		cfg.SkipSSLVerify = true
	}
	if fc.StatePath != "" {
		cfg.StatePath = fc.StatePath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.DefaultSpeed > 0 && fc.DefaultSpeed <= 100 {
		cfg.DefaultSpeed = uint8(fc.DefaultSpeed)
	}
	if fc.Session.SyncErrorLimit > 0 {
		cfg.Session.SyncErrorLimit = fc.Session.SyncErrorLimit
	}

	if err := parseDuration("pairing_timeout", fc.PairingTimeout, &cfg.PairingTimeout); err != nil {
		return err
	}
	if err := parseDuration("session.response_timeout", fc.Session.ResponseTimeout, &cfg.Session.ResponseTimeout); err != nil {
		return err
	}
	if err := parseDuration("session.idle_cadence", fc.Session.IdleCadence, &cfg.Session.IdleCadence); err != nil {
		return err
	}
	if err := parseDuration("session.active_cadence", fc.Session.ActiveCadence, &cfg.Session.ActiveCadence); err != nil {
		return err
	}
	if err := parseDuration("session.min_write_spacing", fc.Session.MinWriteSpacing, &cfg.Session.MinWriteSpacing); err != nil {
		return err
	}
	if err := parseDuration("session.stall_timeout", fc.Session.StallTimeout, &cfg.Session.StallTimeout); err != nil {
		return err
	}
	return nil
}
