// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/fleet"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

// smartPointByName maps the CLI spelling to the protocol code.
func smartPointByName(name string) (mylifter.SmartPointCode, error) {
	switch name {
	case "top":
		return mylifter.SmartPointTop, nil
	case "bottom":
		return mylifter.SmartPointBottom, nil
	case "reference":
		return mylifter.SmartPointReference, nil
	}
	return 0, fmt.Errorf("unknown smart point %q (want top, bottom or reference)", name)
}

var smartCmd = &cobra.Command{
	Use:   "smart",
	Short: "Manage and use on-device smart points",
	Long: `Manage and use on-device smart points.

A smart point is a position stored on the winch itself. Once set, the
winch can return to it on its own with 'smart up' / 'smart down'.`,
}

var smartSetCmd = &cobra.Command{
	Use:       "set top|bottom|reference",
	Short:     "Store the current position as a smart point",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"top", "bottom", "reference"},
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := smartPointByName(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			return w.Session.SetSmartPoint(ctx, point)
		})
		return fleet.FirstError(results)
	},
}

var smartClearCmd = &cobra.Command{
	Use:       "clear top|bottom|reference",
	Short:     "Clear a stored smart point",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"top", "bottom", "reference"},
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := smartPointByName(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			return w.Session.ClearSmartPoint(ctx, point)
		})
		return fleet.FirstError(results)
	},
}

var smartUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Move to the upper smart point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimedMove(cmd, mylifter.MoveSmartUp)
	},
}

var smartDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Move to the lower smart point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimedMove(cmd, mylifter.MoveSmartDown)
	},
}

func init() {
	addTargetFlags(smartSetCmd, smartClearCmd, smartUpCmd, smartDownCmd)
	smartUpCmd.Flags().DurationVar(&moveFor, "for", 0, "Bound the smart move, then stop (default: until Ctrl-C)")
	smartDownCmd.Flags().DurationVar(&moveFor, "for", 0, "Bound the smart move, then stop (default: until Ctrl-C)")
	smartCmd.AddCommand(smartSetCmd, smartClearCmd, smartUpCmd, smartDownCmd)
	rootCmd.AddCommand(smartCmd)
}
