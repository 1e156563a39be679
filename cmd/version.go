// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/fleet"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show device firmware and protocol versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connectTargets(ctx, target); err != nil {
			return err
		}
		results := manager.Dispatch(ctx, target, func(ctx context.Context, w *fleet.Winch) error {
			fw, err := w.Session.FirmwareVersion(ctx)
			if err != nil {
				return err
			}
			note := ""
			if !fw.KnownGood() {
				note = " (not the validated version)"
			}
			line := fmt.Sprintf("%d  firmware %s%s", manager.ID(w), fw, note)
			if pv, err := w.Session.ProtocolVersion(ctx); err == nil {
				line += fmt.Sprintf(", protocol %s", pv)
				if !pv.Known() {
					line += " (undocumented)"
				}
			}
			fmt.Println(line)
			return nil
		})
		return fleet.FirstError(results)
	},
}

func init() {
	addTargetFlags(versionCmd)
	rootCmd.AddCommand(versionCmd)
}
