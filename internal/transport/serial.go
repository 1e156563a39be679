// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/openwinch/winchctl/pkg/mylifter"
)

// Serial bridges to a winch through a UART-attached BLE bridge module.
// The module is expected to be bound to a single device; frames written to
// the port go to the command characteristic, and response notifications
// come back on the same stream in wire frame form (code, length, payload).
type Serial struct {
	portName string
	baudRate int

	mu     sync.Mutex
	port   serial.Port
	notify func([]byte)
	done   chan struct{}
}

// NewSerial creates a serial bridge transport for the given port.
func NewSerial(portName string, baudRate int) *Serial {
	return &Serial{portName: portName, baudRate: baudRate}
}

// Connect opens the serial port and starts the notification reader.
func (s *Serial) Connect(ctx context.Context) error {
	mode := &serial.Mode{
		BaudRate: s.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %v", s.portName, err)
	}

	s.mu.Lock()
	s.port = port
	s.done = make(chan struct{})
	notify := s.notify
	done := s.done
	s.mu.Unlock()

	go s.readLoop(port, notify, done)
	return nil
}

// Write sends one frame to the bridge.
func (s *Serial) Write(data []byte) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return ErrClosed
	}
	if _, err := port.Write(data); err != nil {
		return fmt.Errorf("serial write: %v", err)
	}
	return nil
}

// OnNotification registers the response frame callback. Must be called
// before Connect.
func (s *Serial) OnNotification(fn func(data []byte)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Disconnect closes the port and stops the reader.
func (s *Serial) Disconnect() error {
	s.mu.Lock()
	port := s.port
	done := s.done
	s.port = nil
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
	}
	if port == nil {
		return nil
	}
	return port.Close()
}

// readLoop recovers frame boundaries from the byte stream using the
// length-prefixed header, then hands complete frames to the callback.
func (s *Serial) readLoop(port serial.Port, notify func([]byte), done chan struct{}) {
	header := make([]byte, mylifter.HeaderSize)
	for {
		select {
		case <-done:
			return
		default:
		}

		if _, err := io.ReadFull(port, header); err != nil {
			return
		}
		frame := make([]byte, mylifter.HeaderSize+int(header[1]))
		copy(frame, header)
		if _, err := io.ReadFull(port, frame[mylifter.HeaderSize:]); err != nil {
			return
		}
		if notify != nil {
			notify(frame)
		}
	}
}
