// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage named winch groups",
	Long: `Manage named winch groups.

A group names a subset of the fleet for use as a --target selector, so
'winchctl up -t doors' raises every winch in the group together. Groups
track their members through renumbering when winches are removed.`,
}

var groupSetCmd = &cobra.Command{
	Use:   "set <name> <id>...",
	Short: "Create or replace a group",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args)-1)
		for _, arg := range args[1:] {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid winch ID %q", arg)
			}
			ids = append(ids, id)
		}
		if err := manager.SetGroup(args[0], ids); err != nil {
			return err
		}
		return saveFleet()
	},
}

var groupDelCmd = &cobra.Command{
	Use:   "del <name>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.DeleteGroup(args[0]); err != nil {
			return err
		}
		return saveFleet()
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups and their member IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups := manager.Groups()
		if len(groups) == 0 {
			fmt.Println("No groups defined.")
			return nil
		}
		for name, ids := range groups {
			fmt.Printf("%-16s %v\n", name, ids)
		}
		return nil
	},
}

func init() {
	groupCmd.AddCommand(groupSetCmd, groupDelCmd, groupListCmd)
	rootCmd.AddCommand(groupCmd)
}
