// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package transport provides the wireless link capability consumed by the
// session layer: connect to a winch, write command frames, and deliver
// response frames asynchronously.
//
// Two bridge adapters ship with winchctl: a serial adapter for UART-attached
// BLE bridge modules and a WebSocket adapter for network BLE gateways. A
// direct platform BLE adapter is intentionally out of scope; anything that
// satisfies Transport plugs in.
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned when writing to a disconnected transport.
var ErrClosed = errors.New("transport closed")

// Transport is one winch's wireless link.
//
// OnNotification must be called before Connect; the callback is invoked
// from the transport's read goroutine, one complete response frame per
// call, until Disconnect.
type Transport interface {
	Connect(ctx context.Context) error
	Write(data []byte) error
	OnNotification(fn func(data []byte))
	Disconnect() error
}

// Factory creates a transport for a winch hardware address. The fleet uses
// it to build one transport per registered session.
type Factory func(address string) (Transport, error)
