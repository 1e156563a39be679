// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package winch

import (
	"errors"
	"fmt"

	"github.com/openwinch/winchctl/pkg/mylifter"
)

// ErrMalformedFrame re-exports the codec's framing error so callers can
// classify decode failures without importing the codec.
var ErrMalformedFrame = mylifter.ErrMalformedFrame

// Domain errors for the winch control engine. These are returned by the
// public API and can be checked with errors.Is/errors.As. Conditions the
// session recovers from locally (sync resync, single NACK retry) never
// surface as errors.
var (
	// ErrTransport wraps connect/write/notify failures. Fatal to the
	// affected session; not retried beyond the session's reconnect policy.
	ErrTransport = errors.New("winchctl: transport error")

	// ErrNotConnected is returned for commands against a disconnected session.
	ErrNotConnected = errors.New("winchctl: not connected")

	// ErrNotAuthenticated is returned for commands before the passkey
	// handshake has completed.
	ErrNotAuthenticated = errors.New("winchctl: not authenticated")

	// ErrRequestTimeout is returned when a command response does not arrive
	// within the configured window.
	ErrRequestTimeout = errors.New("winchctl: request timed out")

	// ErrPairingTimeout is returned when the pairing button press does not
	// happen within the operator-supplied window.
	ErrPairingTimeout = errors.New("winchctl: pairing timed out waiting for button press")

	// ErrSoftLimit marks the soft-limit decision point: movement is paused
	// until the caller issues a stop or an override-direction move.
	ErrSoftLimit = errors.New("winchctl: soft limit reached, stop or override required")

	// ErrHardLimit is the physical end-of-travel condition. Terminal for the
	// current move, never retried.
	ErrHardLimit = errors.New("winchctl: hard limit reached")

	// ErrSyncEscalated is returned when position sync errors keep recurring
	// after repeated self-correction attempts.
	ErrSyncEscalated = errors.New("winchctl: position sync failed repeatedly")

	// ErrStalled is returned when a monitored move stops making progress
	// without any limit flag from the device.
	ErrStalled = errors.New("winchctl: movement stalled")

	// ErrSmartPointNotSet is returned when a smart move targets an unset point.
	ErrSmartPointNotSet = errors.New("winchctl: smart point not set")

	// ErrCalibrationRequired is returned when a real-world-unit command
	// targets a session without stored calibration.
	ErrCalibrationRequired = errors.New("winchctl: no calibration, real-world units unavailable")

	// ErrNoPasskey is returned when authentication is attempted without a
	// stored passkey.
	ErrNoPasskey = errors.New("winchctl: no passkey stored, pair first")
)

// TransportError attaches the failing operation to ErrTransport.
func TransportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}

// UnknownWinchError reports an ID that does not resolve to a registered
// session.
type UnknownWinchError struct {
	ID int
}

func (e *UnknownWinchError) Error() string {
	return fmt.Sprintf("winchctl: unknown winch %d", e.ID)
}

// UnknownGroupError reports a selector that is neither an ID list nor a
// registered group name.
type UnknownGroupError struct {
	Name string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("winchctl: unknown group or selector %q", e.Name)
}

// NackError reports a device rejection that persisted through the single
// automatic retry.
type NackError struct {
	Code   uint8 // rejected command code
	Reason uint8
}

func (e *NackError) Error() string {
	return fmt.Sprintf("winchctl: device rejected command 0x%02X (reason 0x%02X)", e.Code, e.Reason)
}
