// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/fleet"
	"github.com/openwinch/winchctl/internal/winch"
)

func winchByIDArg(arg string) (int, *fleet.Winch, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid winch ID %q", arg)
	}
	w, err := manager.Get(id)
	if err != nil {
		return 0, nil, err
	}
	return id, w, nil
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Manage position calibration",
	Long: `Manage the mapping between encoder counts and real-world units.

The winch reports positions in internal encoder counts. A calibration is
a linear fit internal = slope * real + intercept, usually captured from
two known positions: drive the load to a measured height twice and feed
both (internal, real) pairs to 'calibrate fit'.`,
}

var calibrateFitCmd = &cobra.Command{
	Use:   "fit <id> <internal1> <real1> <internal2> <real2>",
	Short: "Derive the calibration from two measured points",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, w, err := winchByIDArg(args[0])
		if err != nil {
			return err
		}
		i1, err1 := strconv.ParseInt(args[1], 10, 32)
		r1, err2 := strconv.ParseFloat(args[2], 64)
		i2, err3 := strconv.ParseInt(args[3], 10, 32)
		r2, err4 := strconv.ParseFloat(args[4], 64)
		for _, e := range []error{err1, err2, err3, err4} {
			if e != nil {
				return fmt.Errorf("invalid calibration point: %v", e)
			}
		}

		cal, ok := winch.TwoPoint(int32(i1), r1, int32(i2), r2)
		if !ok {
			return fmt.Errorf("calibration points must differ in both internal and real value")
		}
		w.SetCalibration(cal)
		if err := saveFleet(); err != nil {
			return err
		}
		fmt.Printf("Winch %d calibrated: slope=%.4f intercept=%.4f\n", id, cal.Slope, cal.Intercept)
		return nil
	},
}

var calibrateShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the stored calibration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, w, err := winchByIDArg(args[0])
		if err != nil {
			return err
		}
		cal := w.Calibration()
		if cal.IsIdentity() {
			fmt.Printf("Winch %d has no calibration; positions are raw encoder counts.\n", id)
			return nil
		}
		fmt.Printf("Winch %d: internal = %.4f * real + %.4f\n", id, cal.Slope, cal.Intercept)
		return nil
	},
}

var calibrateClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Discard the stored calibration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, w, err := winchByIDArg(args[0])
		if err != nil {
			return err
		}
		w.SetCalibration(winch.Identity)
		return saveFleet()
	},
}

func init() {
	calibrateCmd.AddCommand(calibrateFitCmd, calibrateShowCmd, calibrateClearCmd)
	rootCmd.AddCommand(calibrateCmd)
}
