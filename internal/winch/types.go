// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package winch holds the domain types and error taxonomy shared by the
// session, fleet and store layers.
package winch

import "math"

// Calibration maps real-world units (centimeters of travel) to internal
// position units: internal = Slope*real + Intercept.
type Calibration struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Identity is the mapping used by uncalibrated sessions; it passes internal
// units through unchanged.
var Identity = Calibration{Slope: 1, Intercept: 0}

// IsIdentity reports whether the calibration is the identity mapping.
func (c Calibration) IsIdentity() bool {
	return c.Slope == 1 && c.Intercept == 0
}

// ToInternal converts a real-world value to internal position units,
// rounding to the nearest unit.
func (c Calibration) ToInternal(real float64) int32 {
	return int32(math.Round(c.Slope*real + c.Intercept))
}

// ToReal converts an internal position to real-world units. Slope is never
// zero for a stored calibration; TwoPoint rejects degenerate inputs.
func (c Calibration) ToReal(internal int32) float64 {
	return (float64(internal) - c.Intercept) / c.Slope
}

// TwoPoint derives a calibration from two measured reference points
// (internal position, real-world reading). Returns false when the points
// are degenerate.
func TwoPoint(internal1 int32, real1 float64, internal2 int32, real2 float64) (Calibration, bool) {
	if real1 == real2 || internal1 == internal2 {
		return Calibration{}, false
	}
	slope := float64(internal2-internal1) / (real2 - real1)
	return Calibration{
		Slope:     slope,
		Intercept: float64(internal1) - slope*real1,
	}, true
}

// SoftLimits are the configured motion boundaries in internal units. Either
// side may be unset.
type SoftLimits struct {
	Low  *int32 `json:"low,omitempty"`
	High *int32 `json:"high,omitempty"`
}
