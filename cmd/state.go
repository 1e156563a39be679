// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"fmt"

	"github.com/openwinch/winchctl/internal/store"
	"github.com/openwinch/winchctl/internal/winch"
)

// loadFleet populates the manager from the state file. Record order is
// fleet ID order, so stored winch 1 is runtime winch 1.
func loadFleet() error {
	f, err := st.Load()
	if err != nil {
		return err
	}

	for _, rec := range f.Winches {
		w, _, err := manager.Add(rec.Address, rec.Passkey)
		if err != nil {
			return fmt.Errorf("loading stored fleet: %w", err)
		}
		if rec.Name != "" {
			w.SetName(rec.Name)
		}
		if rec.CalSlope != nil && rec.CalIntercept != nil {
			w.SetCalibration(winch.Calibration{Slope: *rec.CalSlope, Intercept: *rec.CalIntercept})
		}
		w.SetSoftLimits(winch.SoftLimits{Low: rec.LimitLow, High: rec.LimitHigh})
	}

	for name, indices := range f.Groups {
		ids := make([]int, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < manager.Count() {
				ids = append(ids, idx+1)
			}
		}
		if len(ids) == 0 {
			continue
		}
		if err := manager.SetGroup(name, ids); err != nil {
			logger.Warn().Err(err).Str("group", name).Msg("dropping stored group")
		}
	}
	return nil
}

// saveFleet writes the manager's current fleet back to the state file.
func saveFleet() error {
	f := &store.File{Groups: make(map[string][]int)}

	for _, w := range manager.List() {
		rec := store.Record{
			Address: w.Session.Address(),
			Passkey: w.Session.Passkey(),
		}
		if name := w.Name(); name != w.Session.Address() {
			rec.Name = name
		}
		if cal := w.Calibration(); !cal.IsIdentity() {
			slope, intercept := cal.Slope, cal.Intercept
			rec.CalSlope = &slope
			rec.CalIntercept = &intercept
		}
		limits := w.SoftLimits()
		rec.LimitLow = limits.Low
		rec.LimitHigh = limits.High
		f.Winches = append(f.Winches, rec)
	}

	for name, ids := range manager.Groups() {
		indices := make([]int, 0, len(ids))
		for _, id := range ids {
			indices = append(indices, id-1)
		}
		f.Groups[name] = indices
	}
	return st.Save(f)
}
