// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package store persists winch credentials and controller-side settings
// between runs. The file is CBOR: passkeys are binary and positions are
// signed, both of which CBOR carries without escaping tricks. Records are
// an ordered list, so fleet IDs survive a save/load round trip.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// formatVersion is bumped on incompatible layout changes.
const formatVersion = 1

// Record is one winch's persisted state.
type Record struct {
	Address string `cbor:"1,keyasint"`
	Name    string `cbor:"2,keyasint,omitempty"`
	Passkey []byte `cbor:"3,keyasint,omitempty"`

	// Calibration as slope/intercept; nil means never calibrated.
	CalSlope     *float64 `cbor:"4,keyasint,omitempty"`
	CalIntercept *float64 `cbor:"5,keyasint,omitempty"`

	// Controller-side travel limits in internal units.
	LimitLow  *int32 `cbor:"6,keyasint,omitempty"`
	LimitHigh *int32 `cbor:"7,keyasint,omitempty"`
}

// File is the full persisted state. Winch order is fleet ID order; group
// members are indices into Winches, not IDs, so the file stays valid even
// if read back into a partially-loaded fleet.
type File struct {
	Version int              `cbor:"1,keyasint"`
	Winches []Record         `cbor:"2,keyasint"`
	Groups  map[string][]int `cbor:"3,keyasint,omitempty"`
}

// Store reads and writes the state file.
type Store struct {
	path string
}

// New creates a store at the given path. The directory is created on the
// first save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file is an empty fleet, not an
// error; a file from a newer format version is rejected.
func (s *Store) Load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &File{Version: formatVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var f File
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}
	if f.Version > formatVersion {
		return nil, fmt.Errorf("state file %s has format version %d, this build understands up to %d",
			s.path, f.Version, formatVersion)
	}
	return &f, nil
}

// Save writes the state file atomically: a temp file in the same directory
// is renamed over the target, so a crash mid-write never corrupts stored
// passkeys.
func (s *Store) Save(f *File) error {
	f.Version = formatVersion
	data, err := cbor.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".winchctl-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("restricting state file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user state file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "winchctl", "state.cbor")
}
