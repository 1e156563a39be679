// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

// Package mylifter provides a Go implementation of the MyLifter wireless
// command protocol (v3.1/v3.2 command set).
//
// MyLifter is a binary protocol for controlling motorized winches over a
// BLE GATT link. Frames are written to the command characteristic and
// responses arrive asynchronously on the response characteristic. This
// package provides frame encoding/decoding, command builders, typed
// response parsers and payload formatting. It carries no session state;
// see internal/session in the winchctl tree for the protocol session.
package mylifter

// BLE service and characteristic UUIDs
const (
	ServiceUUID      = "2d88fb13-e261-4eb9-934b-5a4fea3e3b25"
	CommandCharUUID  = "a886c7ec-31ee-48d6-9aa8-35291b21780f"
	ResponseCharUUID = "00eff2b2-e420-4d23-9bdd-802af59aeb6f"
)

// Frame size limits. A frame is code + length + payload, so the longest
// possible wire frame is 2 + 255 bytes.
const (
	HeaderSize     = 2
	MaxPayloadSize = 255
	MaxFrameSize   = HeaderSize + MaxPayloadSize

	PasskeySize = 6
	MaxNameSize = 32
)

// Command codes - Handshake and identity
const (
	CmdNack               = 0x00
	CmdAck                = 0x01
	CmdPasskey            = 0x03 // get (empty payload) or set (6-byte payload)
	CmdGetProtocolVersion = 0x05
	CmdClearError         = 0x06
	CmdGetName            = 0x08
	CmdSetName            = 0x09
	CmdGetVersion         = 0x0A
)

// Command codes - Motion and telemetry
const (
	CmdMove            = 0x23
	CmdSetSmartPoint   = 0x32
	CmdClearSmartPoint = 0x33
	CmdGetStatus       = 0x34
)

// Command codes - Firmware update (defined for completeness; winchctl does
// not flash firmware)
const (
	CmdFirmwareFileStart     = 0x50
	CmdFirmwareBlockStart    = 0x51
	CmdFirmwareBlockData     = 0x52
	CmdFirmwareValidateCheck = 0x53
	CmdFirmwareFileFinalize  = 0x54
	CmdFirmwareFileAbort     = 0x55
)

// MoveCode is the first payload byte of a Move (0x23) frame.
type MoveCode uint8

const (
	MoveStop         MoveCode = 0
	MoveUp           MoveCode = 1
	MoveDown         MoveCode = 2
	MoveSmartUp      MoveCode = 3
	MoveSmartDown    MoveCode = 4
	MoveReference    MoveCode = 5
	MoveStopError    MoveCode = 6
	MoveOverrideUp   MoveCode = 7
	MoveOverrideDown MoveCode = 8
)

// SmartPointCode selects the stored position for Set/Clear-Smart-Point.
type SmartPointCode uint8

const (
	SmartPointReference SmartPointCode = 0
	SmartPointTop       SmartPointCode = 1
	SmartPointBottom    SmartPointCode = 2
)

// ErrorCode values observed in Move responses.
type ErrorCode uint8

const (
	ErrNone             ErrorCode = 0x00
	ErrSync             ErrorCode = 0x09
	ErrSoftLimit        ErrorCode = 0x81
	ErrSmartPointNotSet ErrorCode = 0x83
	ErrHardLimit        ErrorCode = 0x86
)

// Speed limits for Move frames
const (
	MinSpeed = 0
	MaxSpeed = 100
)

// KnownGoodFirmware is the firmware version the v3.x command set was
// validated against. A mismatch is a warning, not an error.
const (
	KnownGoodFirmwareMajor = 3
	KnownGoodFirmwareMinor = 2
)

// Known protocol versions. Unknown versions are flagged by callers, never
// rejected.
var KnownProtocolVersions = [][2]uint8{{3, 1}, {3, 2}}
