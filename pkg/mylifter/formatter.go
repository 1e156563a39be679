// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"fmt"
	"strings"
)

// CommandName returns the human-readable name for a command code.
// The passkey code 0x03 is shared between get and set; use FrameName to
// disambiguate by payload length.
func CommandName(code uint8) string {
	switch code {
	case CmdNack:
		return "NACK"
	case CmdAck:
		return "ACK"
	case CmdPasskey:
		return "PASSKEY"
	case CmdGetProtocolVersion:
		return "GET_PROTOCOL_VERSION"
	case CmdClearError:
		return "CLEAR_ERROR"
	case CmdGetName:
		return "GET_NAME"
	case CmdSetName:
		return "SET_NAME"
	case CmdGetVersion:
		return "GET_VERSION"
	case CmdMove:
		return "MOVE"
	case CmdSetSmartPoint:
		return "SET_SMART_POINT"
	case CmdClearSmartPoint:
		return "CLEAR_SMART_POINT"
	case CmdGetStatus:
		return "GET_STATUS"
	case CmdFirmwareFileStart:
		return "FIRMWARE_FILE_START"
	case CmdFirmwareBlockStart:
		return "FIRMWARE_BLOCK_START"
	case CmdFirmwareBlockData:
		return "FIRMWARE_BLOCK_DATA"
	case CmdFirmwareValidateCheck:
		return "FIRMWARE_VALIDATE_CHECK"
	case CmdFirmwareFileFinalize:
		return "FIRMWARE_FILE_FINALIZE"
	case CmdFirmwareFileAbort:
		return "FIRMWARE_FILE_ABORT"
	default:
		return "UNKNOWN"
	}
}

// FrameName returns the command name with the shared get/set codes
// disambiguated the way the device does it: by payload length.
func FrameName(f Frame) string {
	if f.Code == CmdPasskey {
		if len(f.Payload) == 0 {
			return "GET_PASSKEY"
		}
		return "SET_PASSKEY"
	}
	return CommandName(f.Code)
}

// MoveCodeName returns the human-readable name for a move code.
func MoveCodeName(code MoveCode) string {
	switch code {
	case MoveStop:
		return "STOP"
	case MoveUp:
		return "UP"
	case MoveDown:
		return "DOWN"
	case MoveSmartUp:
		return "SMART_UP"
	case MoveSmartDown:
		return "SMART_DOWN"
	case MoveReference:
		return "MOVE_REFERENCE"
	case MoveStopError:
		return "STOP_ERROR"
	case MoveOverrideUp:
		return "OVERRIDE_UP"
	case MoveOverrideDown:
		return "OVERRIDE_DOWN"
	default:
		return "UNKNOWN"
	}
}

// ErrorName returns the human-readable name for a move response error code.
func ErrorName(code ErrorCode) string {
	switch code {
	case ErrNone:
		return "NONE"
	case ErrSync:
		return "SYNC_ERROR"
	case ErrSoftLimit:
		return "SOFT_LIMIT"
	case ErrSmartPointNotSet:
		return "SMART_POINT_NOT_SET"
	case ErrHardLimit:
		return "HARD_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame renders a frame in human-readable form for logs and the
// packet inspector. Known payloads are decoded; anything else falls back
// to a hex dump.
func FormatFrame(f Frame) string {
	result := fmt.Sprintf("%s (0x%02X) len=%d\n", FrameName(f), f.Code, len(f.Payload))
	if len(f.Payload) > 0 {
		result += formatPayload(f)
	}
	return result
}

func formatPayload(f Frame) string {
	switch f.Code {
	case CmdMove:
		if len(f.Payload) == 6 {
			// Request shape: move code, speed, echoed position
			code := MoveCode(f.Payload[0])
			speed := f.Payload[1]
			pos := int32(uint32(f.Payload[2]) | uint32(f.Payload[3])<<8 | uint32(f.Payload[4])<<16 | uint32(f.Payload[5])<<24)
			return fmt.Sprintf("  Move: %s (0x%02X), Speed: %d, Echo: %d\n", MoveCodeName(code), uint8(code), speed, pos)
		}
		if resp, err := ParseMoveResponse(f); err == nil {
			return fmt.Sprintf("  Status: 0x%02X, Error: %s (0x%02X), Position: %d, Weight: %d\n",
				resp.Status, ErrorName(resp.Error), uint8(resp.Error), resp.Position, resp.Weight)
		}

	case CmdAck:
		if ack, err := ParseAck(f); err == nil {
			return fmt.Sprintf("  Acked: %s (0x%02X)\n", CommandName(ack.AckedCode), ack.AckedCode)
		}

	case CmdNack:
		if nack, err := ParseNack(f); err == nil {
			return fmt.Sprintf("  Nacked: %s (0x%02X), Reason: 0x%02X\n", CommandName(nack.AckedCode), nack.AckedCode, nack.Reason)
		}

	case CmdPasskey:
		// Never print the secret itself
		return fmt.Sprintf("  Passkey: %d bytes (redacted)\n", len(f.Payload))

	case CmdGetProtocolVersion:
		if v, err := ParseProtocolVersion(f); err == nil {
			return fmt.Sprintf("  Protocol: v%s\n", v)
		}

	case CmdGetVersion:
		if v, err := ParseFirmwareVersion(f); err == nil {
			return fmt.Sprintf("  Firmware: v%s\n", v)
		}

	case CmdGetStatus:
		if s, err := ParseStatus(f); err == nil {
			return fmt.Sprintf("  Cycles: %d, Time: %d, Temp: %d..%d, Resets: %d, Errors: %d, Classes: 0x%08X\n",
				s.TotalCycles, s.TotalTime, s.MinTemp, s.MaxTemp, s.ResetCount, s.ErrorCount, s.ErrorClasses)
		}

	case CmdSetSmartPoint, CmdClearSmartPoint:
		if len(f.Payload) >= 1 {
			return fmt.Sprintf("  Point: %d\n", f.Payload[0])
		}

	case CmdSetName, CmdGetName:
		return fmt.Sprintf("  Name: %q\n", strings.TrimRight(string(f.Payload), "\x00"))
	}

	// Default: hex dump
	var b strings.Builder
	b.WriteString("  Payload: ")
	for i, by := range f.Payload {
		if i > 0 && i%16 == 0 {
			b.WriteString("\n           ")
		}
		fmt.Fprintf(&b, "%02X ", by)
	}
	b.WriteString("\n")
	return b.String()
}
