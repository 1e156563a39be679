// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown transport", func(c *Config) { c.Transport = "carrier-pigeon" }},
		{"ws without url", func(c *Config) { c.Transport = TransportWS }},
		{"serial without device", func(c *Config) { c.SerialDevice = "" }},
		{"zero baud", func(c *Config) { c.SerialBaud = 0 }},
		{"speed over 100", func(c *Config) { c.DefaultSpeed = 101 }},
		{"zero speed", func(c *Config) { c.DefaultSpeed = 0 }},
		{"active slower than idle", func(c *Config) {
			c.Session.ActiveCadence = c.Session.IdleCadence + time.Millisecond
		}},
		{"zero sync limit", func(c *Config) { c.Session.SyncErrorLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted a bad config")
			}
		})
	}
}

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
transport = "ws"
log_level = "debug"
default_speed = 60

[gateway]
url = "wss://bridge.local:8443"
username = "operator"
skip_ssl_verify = true

[session]
idle_cadence = "300ms"
active_cadence = "80ms"
sync_error_limit = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	cfg := Default()
	if err := Apply(&cfg, fc); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if cfg.Transport != TransportWS {
		t.Errorf("Transport = %q, want ws", cfg.Transport)
	}
	if cfg.GatewayURL != "wss://bridge.local:8443" {
		t.Errorf("GatewayURL = %q", cfg.GatewayURL)
	}
	if cfg.Username != "operator" || !cfg.SkipSSLVerify {
		t.Error("gateway credentials not applied")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DefaultSpeed != 60 {
		t.Errorf("DefaultSpeed = %d, want 60", cfg.DefaultSpeed)
	}
	if cfg.Session.IdleCadence != 300*time.Millisecond {
		t.Errorf("IdleCadence = %v, want 300ms", cfg.Session.IdleCadence)
	}
	if cfg.Session.ActiveCadence != 80*time.Millisecond {
		t.Errorf("ActiveCadence = %v, want 80ms", cfg.Session.ActiveCadence)
	}
	if cfg.Session.SyncErrorLimit != 5 {
		t.Errorf("SyncErrorLimit = %d, want 5", cfg.Session.SyncErrorLimit)
	}

	// Untouched fields keep their defaults
	if cfg.Session.ResponseTimeout != Default().Session.ResponseTimeout {
		t.Error("unset response timeout was modified")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("applied config invalid: %v", err)
	}
}

func TestApplyBadDuration(t *testing.T) {
	var fc FileConfig
	fc.Session.IdleCadence = "soonish"
	cfg := Default()
	if err := Apply(&cfg, fc); err == nil {
		t.Fatal("Apply accepted an unparseable duration")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("LoadFile succeeded on a missing file")
	}
}
