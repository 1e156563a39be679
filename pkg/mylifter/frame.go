// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"errors"
	"fmt"
)

// ErrMalformedFrame is wrapped by all Decode failures.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is a single MyLifter protocol frame.
// Wire form: [Command Code (1B)][Payload Length (1B)][Payload], with all
// multi-byte payload integers little-endian.
type Frame struct {
	Code    uint8
	Payload []byte
}

// NewFrame creates a frame with the given command code and payload.
// Panics if the payload exceeds MaxPayloadSize; payloads are built by the
// command constructors in this package and never approach the limit.
func NewFrame(code uint8, payload []byte) Frame {
	if len(payload) > MaxPayloadSize {
		panic(fmt.Sprintf("mylifter: payload too large: %d bytes", len(payload)))
	}
	return Frame{Code: code, Payload: payload}
}

// Encode serializes the frame to wire format.
func (f Frame) Encode() []byte {
	out := make([]byte, HeaderSize+len(f.Payload))
	out[0] = f.Code
	out[1] = uint8(len(f.Payload))
	copy(out[HeaderSize:], f.Payload)
	return out
}

// Decode parses a frame from raw notification bytes.
// Fails with ErrMalformedFrame if fewer than two bytes are available or the
// declared length exceeds the remaining bytes. Trailing bytes beyond the
// declared length are ignored; some GATT stacks pad notifications.
func Decode(data []byte) (Frame, error) {
	if len(data) < HeaderSize {
		return Frame{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedFrame, len(data), HeaderSize)
	}
	length := int(data[1])
	if length > len(data)-HeaderSize {
		return Frame{}, fmt.Errorf("%w: declared length %d exceeds %d remaining bytes",
			ErrMalformedFrame, length, len(data)-HeaderSize)
	}
	payload := make([]byte, length)
	copy(payload, data[HeaderSize:HeaderSize+length])
	return Frame{Code: data[0], Payload: payload}, nil
}

// Len returns the encoded wire length of the frame.
func (f Frame) Len() int {
	return HeaderSize + len(f.Payload)
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (0x%02X) len=%d", CommandName(f.Code), f.Code, len(f.Payload))
}
