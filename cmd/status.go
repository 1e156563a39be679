// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/fleet"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live position and lifetime counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}

		var mu sync.Mutex
		lines := make(map[int]string)
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			id := manager.ID(w)
			s := w.Session

			line := fmt.Sprintf("%d  %-20s pos=%d weight=%d state=%s",
				id, w.Name(), s.Position(), s.Weight(), s.State())
			if real, err := w.RealPosition(); err == nil {
				line += fmt.Sprintf(" real=%.2f", real)
			}
			if s.AwaitingOverride() {
				line += " [soft limit: stop or override]"
			}

			if st, err := s.Status(ctx); err == nil {
				line += fmt.Sprintf("\n   cycles=%d runtime=%ds resets=%d errors=%d",
					st.TotalCycles, st.TotalTime, st.ResetCount, st.ErrorCount)
			} else {
				line += fmt.Sprintf("\n   counters unavailable: %v", err)
			}

			mu.Lock()
			lines[id] = line
			mu.Unlock()
			return nil
		})

		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("%d  %s: %v\n", r.ID, r.Address, r.Err)
				continue
			}
			mu.Lock()
			fmt.Println(lines[r.ID])
			mu.Unlock()
		}
		return nil
	},
}

var nameCmd = &cobra.Command{
	Use:   "name [new-name]",
	Short: "Show or set the device name",
	Long: `Show or set the name stored on the winch itself.

Without an argument the stored name is printed. With one, it is written
to the device and mirrored as the controller-side display name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}

		if len(args) == 0 {
			results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
				name, err := w.Session.DeviceName(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%d  %s\n", manager.ID(w), name)
				return nil
			})
			return fleet.FirstError(results)
		}

		name := args[0]
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			if err := w.Session.SetDeviceName(ctx, name); err != nil {
				return err
			}
			w.SetName(name)
			return nil
		})
		if err := fleet.FirstError(results); err != nil {
			return err
		}
		return saveFleet()
	},
}

func init() {
	addTargetFlags(statusCmd, nameCmd)
	rootCmd.AddCommand(statusCmd, nameCmd)
}
