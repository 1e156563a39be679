// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package fake provides a scriptable in-memory Transport for tests.
package fake

import (
	"context"
	"sync"

	"github.com/openwinch/winchctl/internal/transport"
)

// Transport records every written frame and lets tests inject notification
// frames or script automatic responses. The responder, when set, is invoked
// synchronously from Write; its frames are delivered to the notification
// callback before Write returns, which keeps tests deterministic.
type Transport struct {
	mu        sync.Mutex
	connected bool
	notify    func([]byte)
	writes    [][]byte
	responder func(frame []byte) [][]byte

	// Error injection
	ConnectErr error
	WriteErr   error
}

// New creates a disconnected fake transport.
func New() *Transport {
	return &Transport{}
}

// Connect marks the transport connected, or fails with ConnectErr.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ConnectErr != nil {
		return t.ConnectErr
	}
	t.connected = true
	return nil
}

// Write records the frame and feeds it to the responder, if any.
func (t *Transport) Write(data []byte) error {
	t.mu.Lock()
	if t.WriteErr != nil {
		err := t.WriteErr
		t.mu.Unlock()
		return err
	}
	if !t.connected {
		t.mu.Unlock()
		return transport.ErrClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	t.writes = append(t.writes, buf)
	responder := t.responder
	notify := t.notify
	t.mu.Unlock()

	if responder != nil && notify != nil {
		for _, resp := range responder(buf) {
			notify(resp)
		}
	}
	return nil
}

// OnNotification registers the notification callback.
func (t *Transport) OnNotification(fn func(data []byte)) {
	t.mu.Lock()
	t.notify = fn
	t.mu.Unlock()
}

// Disconnect marks the transport closed.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()
	return nil
}

// Notify injects a notification frame, as if the device had sent it.
func (t *Transport) Notify(data []byte) {
	t.mu.Lock()
	notify := t.notify
	t.mu.Unlock()
	if notify != nil {
		notify(data)
	}
}

// SetResponder scripts automatic responses: fn receives each written frame
// and returns zero or more notification frames to deliver.
func (t *Transport) SetResponder(fn func(frame []byte) [][]byte) {
	t.mu.Lock()
	t.responder = fn
	t.mu.Unlock()
}

// Writes returns a snapshot of all frames written so far.
func (t *Transport) Writes() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.writes))
	copy(out, t.writes)
	return out
}

// LastWrite returns the most recent written frame, or nil.
func (t *Transport) LastWrite() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.writes) == 0 {
		return nil
	}
	return t.writes[len(t.writes)-1]
}

// Connected reports the connection state.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}
