// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"encoding/binary"
	"fmt"
)

// Command builder functions create Frame structs ready for encoding.
// These are convenience wrappers around NewFrame that ensure correct payload
// layout per the MyLifter protocol. The device disambiguates the shared
// get/set codes (passkey 0x03) by payload length, so get and set are
// distinct builders producing the same command code.

// NewMoveCommand creates a MOVE frame (0x23).
// Payload: [Move Code (1B)][Speed (1B)][Echoed Position (4B, little-endian i32)].
// The echoed position must be the most recently device-reported position;
// a stale echo against a nonzero device position triggers a sync error.
func NewMoveCommand(code MoveCode, speed uint8, echoedPosition int32) Frame {
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	payload := make([]byte, 6)
	payload[0] = uint8(code)
	payload[1] = speed
	binary.LittleEndian.PutUint32(payload[2:], uint32(echoedPosition))
	return NewFrame(CmdMove, payload)
}

// NewGetPasskey creates a PASSKEY frame (0x03) with an empty payload.
// The device answers with its 6-byte passkey only after the physical
// button is pressed.
func NewGetPasskey() Frame {
	return NewFrame(CmdPasskey, nil)
}

// NewSetPasskey creates a PASSKEY frame (0x03) carrying the 6-byte secret.
// Sending the stored passkey authenticates the session.
func NewSetPasskey(passkey []byte) (Frame, error) {
	if len(passkey) != PasskeySize {
		return Frame{}, fmt.Errorf("passkey must be %d bytes, got %d", PasskeySize, len(passkey))
	}
	p := make([]byte, PasskeySize)
	copy(p, passkey)
	return NewFrame(CmdPasskey, p), nil
}

// NewGetProtocolVersion creates a GET_PROTOCOL_VERSION frame (0x05).
func NewGetProtocolVersion() Frame {
	return NewFrame(CmdGetProtocolVersion, nil)
}

// NewClearError creates a CLEAR_ERROR frame (0x06).
// Required before motion resumes after a limit condition.
func NewClearError() Frame {
	return NewFrame(CmdClearError, nil)
}

// NewGetName creates a GET_NAME frame (0x08) reading from the given offset.
func NewGetName(offset uint8) Frame {
	return NewFrame(CmdGetName, []byte{offset})
}

// NewSetName creates a SET_NAME frame (0x09).
func NewSetName(name string) (Frame, error) {
	if len(name) > MaxNameSize {
		return Frame{}, fmt.Errorf("name must be at most %d bytes, got %d", MaxNameSize, len(name))
	}
	return NewFrame(CmdSetName, []byte(name)), nil
}

// NewGetVersion creates a GET_VERSION frame (0x0A).
func NewGetVersion() Frame {
	return NewFrame(CmdGetVersion, nil)
}

// NewSetSmartPoint creates a SET_SMART_POINT frame (0x32).
// Stores the current position as the reference, top or bottom point.
func NewSetSmartPoint(point SmartPointCode) Frame {
	return NewFrame(CmdSetSmartPoint, []byte{uint8(point)})
}

// NewClearSmartPoint creates a CLEAR_SMART_POINT frame (0x33).
func NewClearSmartPoint(point SmartPointCode) Frame {
	return NewFrame(CmdClearSmartPoint, []byte{uint8(point)})
}

// NewGetStatus creates a GET_STATUS frame (0x34) with an empty payload.
func NewGetStatus() Frame {
	return NewFrame(CmdGetStatus, nil)
}
