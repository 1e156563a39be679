// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"encoding/binary"
	"fmt"
)

// Typed response parsers. Each takes a decoded Frame and fails if the frame
// carries the wrong command code or a short payload.

// MoveResponse is the reply to a MOVE frame, including keep-alive frames.
// Payload: [Status (1B)][Error (1B)][Position (4B i32)][Weight (2B u16)].
type MoveResponse struct {
	Status   uint8
	Error    ErrorCode
	Position int32
	Weight   uint16
}

// ParseMoveResponse parses a MOVE (0x23) response frame.
func ParseMoveResponse(f Frame) (MoveResponse, error) {
	if f.Code != CmdMove {
		return MoveResponse{}, fmt.Errorf("not a move response: %s", f)
	}
	if len(f.Payload) < 8 {
		return MoveResponse{}, fmt.Errorf("move response payload too short: %d bytes, need 8", len(f.Payload))
	}
	return MoveResponse{
		Status:   f.Payload[0],
		Error:    ErrorCode(f.Payload[1]),
		Position: int32(binary.LittleEndian.Uint32(f.Payload[2:6])),
		Weight:   binary.LittleEndian.Uint16(f.Payload[6:8]),
	}, nil
}

// Ack is a positive acknowledgement of a previously sent command.
type Ack struct {
	AckedCode uint8
}

// ParseAck parses an ACK (0x01) frame. The payload's first byte names the
// acknowledged command code.
func ParseAck(f Frame) (Ack, error) {
	if f.Code != CmdAck {
		return Ack{}, fmt.Errorf("not an ack: %s", f)
	}
	if len(f.Payload) < 1 {
		return Ack{}, fmt.Errorf("ack payload too short: %d bytes", len(f.Payload))
	}
	return Ack{AckedCode: f.Payload[0]}, nil
}

// Nack is a rejection of a previously sent command.
type Nack struct {
	AckedCode uint8
	Reason    uint8
}

// ParseNack parses a NACK (0x00) frame.
func ParseNack(f Frame) (Nack, error) {
	if f.Code != CmdNack {
		return Nack{}, fmt.Errorf("not a nack: %s", f)
	}
	if len(f.Payload) < 2 {
		return Nack{}, fmt.Errorf("nack payload too short: %d bytes, need 2", len(f.Payload))
	}
	return Nack{AckedCode: f.Payload[0], Reason: f.Payload[1]}, nil
}

// ParsePasskey parses a PASSKEY (0x03) frame carrying the device's 6-byte
// secret, delivered after the physical button press during pairing.
func ParsePasskey(f Frame) ([]byte, error) {
	if f.Code != CmdPasskey {
		return nil, fmt.Errorf("not a passkey frame: %s", f)
	}
	if len(f.Payload) != PasskeySize {
		return nil, fmt.Errorf("passkey payload is %d bytes, need %d", len(f.Payload), PasskeySize)
	}
	key := make([]byte, PasskeySize)
	copy(key, f.Payload)
	return key, nil
}

// ProtocolVersion is the nibble-encoded protocol revision.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Known reports whether this protocol version is part of the documented
// command set. Unknown versions are flagged by callers, not rejected.
func (v ProtocolVersion) Known() bool {
	for _, kv := range KnownProtocolVersions {
		if kv[0] == v.Major && kv[1] == v.Minor {
			return true
		}
	}
	return false
}

// ParseProtocolVersion parses a GET_PROTOCOL_VERSION (0x05) response.
// The single payload byte packs major in the high nibble, minor in the low.
func ParseProtocolVersion(f Frame) (ProtocolVersion, error) {
	if f.Code != CmdGetProtocolVersion {
		return ProtocolVersion{}, fmt.Errorf("not a protocol version response: %s", f)
	}
	if len(f.Payload) < 1 {
		return ProtocolVersion{}, fmt.Errorf("protocol version payload too short: %d bytes", len(f.Payload))
	}
	return ProtocolVersion{
		Major: f.Payload[0] >> 4,
		Minor: f.Payload[0] & 0x0F,
	}, nil
}

// FirmwareVersion is the device firmware revision from GET_VERSION.
type FirmwareVersion struct {
	Major uint8
	Minor uint8
}

func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// KnownGood reports whether the firmware matches the version the command
// set was validated against.
func (v FirmwareVersion) KnownGood() bool {
	return v.Major == KnownGoodFirmwareMajor && v.Minor == KnownGoodFirmwareMinor
}

// ParseFirmwareVersion parses a GET_VERSION (0x0A) response.
// The payload is at least 8 bytes; firmware major and minor sit at byte
// offsets 7 and 6 respectively.
func ParseFirmwareVersion(f Frame) (FirmwareVersion, error) {
	if f.Code != CmdGetVersion {
		return FirmwareVersion{}, fmt.Errorf("not a version response: %s", f)
	}
	if len(f.Payload) < 8 {
		return FirmwareVersion{}, fmt.Errorf("version payload too short: %d bytes, need 8", len(f.Payload))
	}
	return FirmwareVersion{Major: f.Payload[7], Minor: f.Payload[6]}, nil
}

// Status is the device's lifetime telemetry from GET_STATUS.
// Payload: cycles:u16, time:u32, minTemp:u16, maxTemp:u16, resets:u16,
// errors:u16, errorClasses:u32 (18 bytes, little-endian).
type Status struct {
	TotalCycles  uint16
	TotalTime    uint32
	MinTemp      uint16
	MaxTemp      uint16
	ResetCount   uint16
	ErrorCount   uint16
	ErrorClasses uint32
}

// ParseStatus parses a GET_STATUS (0x34) response.
func ParseStatus(f Frame) (Status, error) {
	if f.Code != CmdGetStatus {
		return Status{}, fmt.Errorf("not a status response: %s", f)
	}
	if len(f.Payload) < 18 {
		return Status{}, fmt.Errorf("status payload too short: %d bytes, need 18", len(f.Payload))
	}
	p := f.Payload
	return Status{
		TotalCycles:  binary.LittleEndian.Uint16(p[0:2]),
		TotalTime:    binary.LittleEndian.Uint32(p[2:6]),
		MinTemp:      binary.LittleEndian.Uint16(p[6:8]),
		MaxTemp:      binary.LittleEndian.Uint16(p[8:10]),
		ResetCount:   binary.LittleEndian.Uint16(p[10:12]),
		ErrorCount:   binary.LittleEndian.Uint16(p[12:14]),
		ErrorClasses: binary.LittleEndian.Uint32(p[14:18]),
	}, nil
}

// ParseName parses a GET_NAME (0x08) response payload as a device name
// chunk. Trailing NUL padding is stripped.
func ParseName(f Frame) (string, error) {
	if f.Code != CmdGetName {
		return "", fmt.Errorf("not a name response: %s", f)
	}
	end := len(f.Payload)
	for end > 0 && f.Payload[end-1] == 0 {
		end--
	}
	return string(f.Payload[:end]), nil
}
