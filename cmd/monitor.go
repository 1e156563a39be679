// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openwinch/winchctl/pkg/mylifter"
)

var monitorRaw bool

var monitorCmd = &cobra.Command{
	Use:   "monitor <address>",
	Short: "Display decoded protocol frames from a winch",
	Long: `Continuously decode and display protocol frames as they arrive.

Attaches a raw transport to the given address without starting a session,
so no keep-alives are sent and the device is observed passively. Useful
for diagnosing a misbehaving winch or bridge.`,
	Args: cobra.ExactArgs(1),
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorRaw, "raw", false, "Also show the undecoded frame bytes")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	factory, err := transportFactory()
	if err != nil {
		return err
	}
	tr, err := factory(args[0])
	if err != nil {
		return err
	}
	defer tr.Disconnect()

	tr.OnNotification(func(data []byte) {
		ts := time.Now().Format("15:04:05.000")
		frame, err := mylifter.Decode(data)
		if err != nil {
			fmt.Printf("[%s] undecodable: % X (%v)\n", ts, data, err)
			return
		}
		fmt.Printf("[%s] %s\n", ts, mylifter.FormatFrame(frame))
		if monitorRaw {
			fmt.Printf("          raw: % X\n", data)
		}
	})

	if err := tr.Connect(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Monitoring %s. Press Ctrl+C to exit.\n\n", args[0])
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
	case <-cmd.Context().Done():
	}
	return nil
}
