// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/internal/winch"
)

var (
	limitLow  string
	limitHigh string
)

var limitCmd = &cobra.Command{
	Use:   "limit",
	Short: "Manage controller-side travel limits",
	Long: `Manage controller-side travel limits.

These limits clamp position targets ('goto') on the controller before
they reach the winch. They complement the winch's own soft limits: the
device stops itself at its limits, while these keep targets sensible,
for example below a shelf the load must never touch.`,
}

var limitSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Set travel limits in internal units",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, w, err := winchByIDArg(args[0])
		if err != nil {
			return err
		}
		limits := w.SoftLimits()
		if cmd.Flags().Changed("low") {
			v, err := strconv.ParseInt(limitLow, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid low limit %q", limitLow)
			}
			low := int32(v)
			limits.Low = &low
		}
		if cmd.Flags().Changed("high") {
			v, err := strconv.ParseInt(limitHigh, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid high limit %q", limitHigh)
			}
			high := int32(v)
			limits.High = &high
		}
		if limits.Low != nil && limits.High != nil && *limits.Low > *limits.High {
			return fmt.Errorf("low limit %d exceeds high limit %d", *limits.Low, *limits.High)
		}
		w.SetSoftLimits(limits)
		return saveFleet()
	},
}

var limitClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Remove the travel limits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, w, err := winchByIDArg(args[0])
		if err != nil {
			return err
		}
		w.SetSoftLimits(winch.SoftLimits{})
		return saveFleet()
	},
}

var limitShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the travel limits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, w, err := winchByIDArg(args[0])
		if err != nil {
			return err
		}
		limits := w.SoftLimits()
		low, high := "unset", "unset"
		if limits.Low != nil {
			low = strconv.Itoa(int(*limits.Low))
		}
		if limits.High != nil {
			high = strconv.Itoa(int(*limits.High))
		}
		fmt.Printf("Winch %d: low=%s high=%s\n", id, low, high)
		return nil
	},
}

func init() {
	limitSetCmd.Flags().StringVar(&limitLow, "low", "", "Lowest allowed target position")
	limitSetCmd.Flags().StringVar(&limitHigh, "high", "", "Highest allowed target position")
	limitCmd.AddCommand(limitSetCmd, limitClearCmd, limitShowCmd)
	rootCmd.AddCommand(limitCmd)
}
