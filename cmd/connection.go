// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/openwinch/winchctl/internal/config"
	"github.com/openwinch/winchctl/internal/transport"
)

// transportFactory builds the per-winch transport constructor for the
// configured connection mode. The password prompt, if needed, happens once
// here rather than per winch.
func transportFactory() (transport.Factory, error) {
	switch cfg.Transport {
	case config.TransportSerial:
		device, baud := cfg.SerialDevice, cfg.SerialBaud
		return func(address string) (transport.Transport, error) {
			return transport.NewSerial(device, baud), nil
		}, nil

	case config.TransportWS:
		password := cfg.Password
		if cfg.Username != "" && password == "" {
			var err error
			password, err = getPassword()
			if err != nil {
				return nil, err
			}
		}
		opts := transport.WSOptions{
			Username:      cfg.Username,
			Password:      password,
			SkipSSLVerify: cfg.SkipSSLVerify,
		}
		baseURL := cfg.GatewayURL
		return func(address string) (transport.Transport, error) {
			return transport.NewWebSocket(baseURL, address, opts)
		}, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

// getPassword retrieves the gateway password from the environment or
// prompts for it with echo disabled.
func getPassword() (string, error) {
	if pw := os.Getenv("WINCHCTL_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}
