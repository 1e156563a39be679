// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive winch control TUI",
	Long: `Interactive winch control TUI.

Connects the selected winches (all by default) and presents a live panel
with position, weight and state per winch. Keys: u/d move the selected
winch, s stops it, o/O override past a soft limit, S stops everything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if target == "" {
			target = "all"
		}
		if manager.Count() == 0 {
			return fmt.Errorf("no winches registered; pair one first")
		}
		if err := connectTargets(cmd.Context(), target); err != nil {
			return err
		}

		ids, err := manager.Resolve(target)
		if err != nil {
			return err
		}
		rows := make([]winchRow, 0, len(ids))
		for _, id := range ids {
			w, err := manager.Get(id)
			if err != nil {
				return err
			}
			rows = append(rows, winchRow{id: id, w: w})
		}

		p := tea.NewProgram(initialControlModel(rows), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	controlCmd.Flags().StringVarP(&target, "target", "t", "all", "Winch selector: ID, ID list, group name or 'all'")
	rootCmd.AddCommand(controlCmd)
}
