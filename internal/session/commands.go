// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/openwinch/winchctl/internal/winch"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

// Move updates the movement intent carried by the keep-alive loop and
// writes one frame immediately for responsiveness. While paused at a soft
// limit, only Stop and the override directions are accepted.
func (s *Session) Move(ctx context.Context, code mylifter.MoveCode, speed uint8) error {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return winch.ErrNotAuthenticated
	}
	if s.limitPaused {
		switch code {
		case mylifter.MoveStop, mylifter.MoveStopError, mylifter.MoveOverrideUp, mylifter.MoveOverrideDown:
			s.limitPaused = false
		default:
			s.mu.Unlock()
			return winch.ErrSoftLimit
		}
	}
	s.targetMove = code
	s.targetSpeed = speed
	if code == mylifter.MoveStop || code == mylifter.MoveStopError {
		s.targetSpeed = 0
		s.kaMode = KeepAliveIdle
	} else {
		s.kaMode = KeepAliveActive
	}
	echo := s.lastPos
	s.mu.Unlock()

	s.log.Info().
		Str("move", mylifter.MoveCodeName(code)).
		Uint8("speed", speed).
		Msg("move")
	return s.write(mylifter.NewMoveCommand(code, speed, echo).Encode())
}

// Stop halts movement, deescalates the keep-alive cadence to idle and
// clears any pending override decision.
func (s *Session) Stop(ctx context.Context) error {
	return s.Move(ctx, mylifter.MoveStop, 0)
}

// MoveTo drives toward target (internal units) at the given speed and
// stops there. Position increases toward the top of travel, so the
// direction falls out of the comparison with the current position. The
// wait ends early on a hard limit, on a soft limit (surfaced as the
// override decision), on stall, or when ctx is done.
func (s *Session) MoveTo(ctx context.Context, target int32, speed uint8) (err error) {
	start := s.Position()
	dir := mylifter.MoveUp
	if target < start {
		dir = mylifter.MoveDown
	}
	if target == start {
		return nil
	}

	// Stale limit flags block motion; clear them before starting
	if cerr := s.write(mylifter.NewClearError().Encode()); cerr != nil {
		return cerr
	}
	if err := s.Move(ctx, dir, speed); err != nil {
		return err
	}
	defer func() {
		if serr := s.Stop(context.Background()); err == nil {
			err = serr
		}
	}()

	lastPos := start
	lastChange := time.Now()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		s.mu.Lock()
		pos, devErr, paused, st := s.lastPos, s.lastErr, s.limitPaused, s.state
		s.mu.Unlock()

		if st != StateAuthenticated {
			return winch.ErrNotConnected
		}
		if devErr == mylifter.ErrHardLimit {
			return winch.ErrHardLimit
		}
		if paused {
			return winch.ErrSoftLimit
		}
		if (dir == mylifter.MoveUp && pos >= target) || (dir == mylifter.MoveDown && pos <= target) {
			return nil
		}

		if pos != lastPos {
			lastPos = pos
			lastChange = time.Now()
		} else if time.Since(lastChange) > s.cfg.StallTimeout {
			return fmt.Errorf("stalled at %d moving toward %d: %w", pos, target, winch.ErrStalled)
		}
	}
}

// Override resumes motion past a soft limit in the given direction.
func (s *Session) Override(ctx context.Context, dir mylifter.MoveCode, speed uint8) error {
	if dir != mylifter.MoveOverrideUp && dir != mylifter.MoveOverrideDown {
		return fmt.Errorf("override requires an override move code, got %s", mylifter.MoveCodeName(dir))
	}
	if err := s.write(mylifter.NewClearError().Encode()); err != nil {
		return err
	}
	return s.Move(ctx, dir, speed)
}

// SetSmartPoint stores the current position as the given smart point.
func (s *Session) SetSmartPoint(ctx context.Context, point mylifter.SmartPointCode) error {
	_, err := s.request(ctx, mylifter.NewSetSmartPoint(point), s.cfg.ResponseTimeout)
	return err
}

// ClearSmartPoint clears the given smart point.
func (s *Session) ClearSmartPoint(ctx context.Context, point mylifter.SmartPointCode) error {
	_, err := s.request(ctx, mylifter.NewClearSmartPoint(point), s.cfg.ResponseTimeout)
	return err
}

// Status fetches the device's lifetime telemetry counters.
func (s *Session) Status(ctx context.Context) (mylifter.Status, error) {
	resp, err := s.request(ctx, mylifter.NewGetStatus(), s.cfg.ResponseTimeout)
	if err != nil {
		return mylifter.Status{}, err
	}
	return mylifter.ParseStatus(resp)
}

// DeviceName reads the name stored on the device.
func (s *Session) DeviceName(ctx context.Context) (string, error) {
	resp, err := s.request(ctx, mylifter.NewGetName(0), s.cfg.ResponseTimeout)
	if err != nil {
		return "", err
	}
	return mylifter.ParseName(resp)
}

// SetDeviceName writes a name to the device.
func (s *Session) SetDeviceName(ctx context.Context, name string) error {
	frame, err := mylifter.NewSetName(name)
	if err != nil {
		return err
	}
	_, err = s.request(ctx, frame, s.cfg.ResponseTimeout)
	return err
}

// ClearError clears latched limit/error flags on the device.
func (s *Session) ClearError(ctx context.Context) error {
	_, err := s.request(ctx, mylifter.NewClearError(), s.cfg.ResponseTimeout)
	return err
}

// FirmwareVersion fetches the device firmware version.
func (s *Session) FirmwareVersion(ctx context.Context) (mylifter.FirmwareVersion, error) {
	resp, err := s.request(ctx, mylifter.NewGetVersion(), s.cfg.ResponseTimeout)
	if err != nil {
		return mylifter.FirmwareVersion{}, err
	}
	return mylifter.ParseFirmwareVersion(resp)
}

// ProtocolVersion fetches the device protocol version.
func (s *Session) ProtocolVersion(ctx context.Context) (mylifter.ProtocolVersion, error) {
	resp, err := s.request(ctx, mylifter.NewGetProtocolVersion(), s.cfg.ResponseTimeout)
	if err != nil {
		return mylifter.ProtocolVersion{}, err
	}
	return mylifter.ParseProtocolVersion(resp)
}

// CheckVersions runs the post-connect firmware and protocol version
// probes. A firmware mismatch warns once per connection; an unknown
// protocol version is flagged but never rejected. Probe failures are
// non-fatal.
func (s *Session) CheckVersions(ctx context.Context) {
	if fw, err := s.FirmwareVersion(ctx); err == nil {
		if !fw.KnownGood() {
			s.mu.Lock()
			warned := s.warnedVersion
			s.warnedVersion = true
			pos := s.lastPos
			s.mu.Unlock()
			if !warned {
				s.log.Warn().
					Str("firmware", fw.String()).
					Str("validated", fmt.Sprintf("%d.%d", mylifter.KnownGoodFirmwareMajor, mylifter.KnownGoodFirmwareMinor)).
					Msg("firmware differs from validated version")
				s.emit(Event{Type: EventVersionMismatch, Position: pos})
			}
		}
	} else {
		s.log.Debug().Err(err).Msg("firmware version probe failed")
	}

	if pv, err := s.ProtocolVersion(ctx); err == nil {
		if !pv.Known() {
			s.log.Warn().Str("protocol", pv.String()).Msg("undocumented protocol version")
		}
	} else {
		s.log.Debug().Err(err).Msg("protocol version probe failed")
	}
}
