// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/fleet"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

var (
	moveFor  time.Duration
	gotoReal bool
)

// connectTargets brings every selected winch to the authenticated state.
func connectTargets(ctx context.Context, selector string) error {
	results := manager.Dispatch(ctx, selector, func(ctx context.Context, w *fleet.Winch) error {
		return manager.Connect(ctx, manager.ID(w))
	})
	return fleet.FirstError(results)
}

// runTimedMove starts a directional move on the selected winches and holds
// it until --for elapses or the user interrupts, then stops everything.
func runTimedMove(cmd *cobra.Command, code mylifter.MoveCode) error {
	ctx := cmd.Context()
	if err := connectTargets(ctx, target); err != nil {
		return err
	}

	results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
		return w.Session.Move(ctx, code, uint8(speed))
	})
	if err := fleet.FirstError(results); err != nil {
		manager.StopAll(context.Background())
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var hold <-chan time.Time
	if moveFor > 0 {
		t := time.NewTimer(moveFor)
		defer t.Stop()
		hold = t.C
	} else {
		fmt.Fprintln(os.Stderr, "Moving. Ctrl-C to stop.")
	}

	select {
	case <-hold:
	case <-sig:
	case <-ctx.Done():
	}
	return fleet.FirstError(manager.StopAll(context.Background()))
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Raise the load",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimedMove(cmd, mylifter.MoveUp)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Lower the load",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimedMove(cmd, mylifter.MoveDown)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop movement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			return w.Session.Stop(ctx)
		})
		return fleet.FirstError(results)
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <position>",
	Short: "Move to a position and stop there",
	Long: `Move to a position and stop there.

By default the position is in internal encoder units. With --real it is in
real-world units through the stored calibration; this fails for winches
that have never been calibrated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}

		if gotoReal {
			pos, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
				return w.MoveToReal(ctx, pos, uint8(speed))
			})
			return fleet.FirstError(results)
		}

		pos, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid position %q", args[0])
		}
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			return w.MoveTo(ctx, int32(pos), uint8(speed))
		})
		return fleet.FirstError(results)
	},
}

var overrideCmd = &cobra.Command{
	Use:       "override up|down",
	Short:     "Resume motion past a soft limit",
	Long:      `Resume motion past a soft limit, in the given direction. Only valid while a winch is paused at a soft limit.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		code := mylifter.MoveOverrideUp
		if args[0] == "down" {
			code = mylifter.MoveOverrideDown
		}
		return runTimedMove(cmd, code)
	},
}

var clearErrorCmd = &cobra.Command{
	Use:   "clear-error",
	Short: "Clear latched error flags on the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			return w.Session.ClearError(ctx)
		})
		return fleet.FirstError(results)
	},
}

func addTargetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringVarP(&target, "target", "t", "", "Winch selector: ID, ID list, group name or 'all' (default: winch 1)")
		c.Flags().IntVarP(&speed, "speed", "s", 100, "Speed percentage (1-100)")
	}
}

func init() {
	addTargetFlags(upCmd, downCmd, stopCmd, gotoCmd, overrideCmd, clearErrorCmd)
	upCmd.Flags().DurationVar(&moveFor, "for", 0, "Move for this long, then stop (default: until Ctrl-C)")
	downCmd.Flags().DurationVar(&moveFor, "for", 0, "Move for this long, then stop (default: until Ctrl-C)")
	overrideCmd.Flags().DurationVar(&moveFor, "for", 0, "Move for this long, then stop (default: until Ctrl-C)")
	gotoCmd.Flags().BoolVar(&gotoReal, "real", false, "Interpret the position in real-world units")
	rootCmd.AddCommand(upCmd, downCmd, stopCmd, gotoCmd, overrideCmd, clearErrorCmd)
}
