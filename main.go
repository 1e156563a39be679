// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project
//
// Winchctl - MyLifter winch controller
//
// A CLI tool for pairing, moving and monitoring MyLifter motorized
// winches, individually or in groups of up to four.

package main

import (
	"fmt"
	"os"

	"github.com/openwinch/winchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
