// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var pairTimeout time.Duration

var pairCmd = &cobra.Command{
	Use:   "pair <address>",
	Short: "Pair a new winch",
	Long: `Pair a new winch at the given hardware address.

The winch reveals its passkey only after its physical button is pressed,
which proves you have access to the device. The command waits for the
press up to --timeout, then stores the passkey for future runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := args[0]

		id := 0
		for i, w := range manager.List() {
			if w.Session.Address() == address {
				id = i + 1
				break
			}
		}
		if id == 0 {
			var err error
			if _, id, err = manager.Add(address, nil); err != nil {
				return err
			}
		}

		timeout := cfg.PairingTimeout
		if cmd.Flags().Changed("timeout") {
			timeout = pairTimeout
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		fmt.Printf("Press the button on the winch at %s...\n", address)
		if _, err := manager.Pair(ctx, id); err != nil {
			return err
		}
		if err := saveFleet(); err != nil {
			return err
		}
		fmt.Printf("Paired winch %d (%s)\n", id, address)
		return nil
	},
}

var unpairCmd = &cobra.Command{
	Use:   "unpair <id>",
	Short: "Remove a winch and forget its passkey",
	Long: `Remove a winch from the fleet and delete its stored passkey.

Remaining winches are renumbered so IDs stay dense: removing winch 2 of 3
makes the old winch 3 the new winch 2. Groups keep following their member
winches through the renumbering.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid winch ID %q", args[0])
		}
		if err := manager.Remove(id); err != nil {
			return err
		}
		if err := saveFleet(); err != nil {
			return err
		}
		fmt.Printf("Removed winch %d\n", id)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered winches and groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		winches := manager.List()
		if len(winches) == 0 {
			fmt.Println("No winches registered. Pair one with: winchctl pair <address>")
			return nil
		}
		for i, w := range winches {
			paired := "unpaired"
			if w.Session.Passkey() != nil {
				paired = "paired"
			}
			cal := "uncalibrated"
			if !w.Calibration().IsIdentity() {
				cal = "calibrated"
			}
			fmt.Printf("%d  %-20s %-18s %s, %s\n", i+1, w.Name(), w.Session.Address(), paired, cal)
		}
		for name, ids := range manager.Groups() {
			fmt.Printf("group %-14s %v\n", name, ids)
		}
		return nil
	},
}

func init() {
	pairCmd.Flags().DurationVar(&pairTimeout, "timeout", 60*time.Second, "How long to wait for the button press (overrides config)")
	rootCmd.AddCommand(pairCmd, unpairCmd, listCmd)
}
