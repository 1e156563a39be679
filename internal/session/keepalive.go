// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package session

import (
	"errors"
	"time"

	"github.com/openwinch/winchctl/internal/winch"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

// startKeepAlive launches the keep-alive writer if it is not running.
func (s *Session) startKeepAlive() {
	s.mu.Lock()
	if s.kaRunning || s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	s.kaRunning = true
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.keepAliveLoop(stopCh)
}

// keepAliveLoop continuously transmits the current movement intent. Every
// frame echoes the most recently device-reported position; an echo that
// lags a nonzero device position triggers a sync error on the device side.
// Cadence is 250 ms while idle and 100 ms while a move is outstanding.
func (s *Session) keepAliveLoop(stopCh chan struct{}) {
	s.log.Debug().Msg("keep-alive loop started")
	for {
		s.mu.Lock()
		move, speed, echo := s.targetMove, s.targetSpeed, s.lastPos
		cadence := s.cfg.IdleCadence
		if s.kaMode == KeepAliveActive {
			cadence = s.cfg.ActiveCadence
		}
		s.mu.Unlock()

		frame := mylifter.NewMoveCommand(move, speed, echo)
		if err := s.write(frame.Encode()); err != nil {
			s.fault(err)
			return
		}

		select {
		case <-stopCh:
			s.log.Debug().Msg("keep-alive loop stopped")
			return
		case <-time.After(cadence):
		}
	}
}

// handleNotification is the transport callback. It decodes and forwards
// frames to the dispatch loop; a malformed frame is fatal to the session.
func (s *Session) handleNotification(data []byte) {
	frame, err := mylifter.Decode(data)
	if err != nil {
		if errors.Is(err, mylifter.ErrMalformedFrame) {
			s.fault(err)
			return
		}
		s.log.Warn().Err(err).Msg("dropping undecodable notification")
		return
	}

	s.mu.Lock()
	frames := s.frames
	s.mu.Unlock()
	if frames == nil {
		return
	}
	select {
	case frames <- frame:
	default:
		s.log.Warn().Str("frame", mylifter.FrameName(frame)).Msg("notification queue full, frame dropped")
	}
}

// dispatchLoop processes decoded response frames for one connection.
func (s *Session) dispatchLoop(frames chan mylifter.Frame, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case f := <-frames:
			s.handleFrame(f)
		}
	}
}

func (s *Session) handleFrame(f mylifter.Frame) {
	s.log.Debug().Str("frame", mylifter.FrameName(f)).Msg("rx")

	if f.Code == mylifter.CmdMove {
		s.handleMoveResponse(f)
		// A move response also proves the device accepted the passkey
		s.markAuthenticated()
	}

	if f.Code == mylifter.CmdAck {
		if ack, err := mylifter.ParseAck(f); err == nil && ack.AckedCode == mylifter.CmdPasskey {
			s.markAuthenticated()
		}
	}

	// Correlate with the in-flight request: same code, or an ACK/NACK
	// naming it
	s.mu.Lock()
	p := s.pending
	var deliver bool
	if p != nil {
		switch f.Code {
		case p.code:
			deliver = true
		case mylifter.CmdAck, mylifter.CmdNack:
			deliver = len(f.Payload) >= 1 && f.Payload[0] == p.code
		}
		if deliver {
			s.pending = nil
		}
	}
	s.mu.Unlock()

	if deliver {
		p.ch <- f
	}
}

// markAuthenticated completes the handshake wait. The protocol is
// ambiguous about whether the explicit passkey ACK or the first answered
// keep-alive confirms authentication, so either does.
func (s *Session) markAuthenticated() {
	s.mu.Lock()
	once, ch := s.authedOnce, s.authedCh
	s.mu.Unlock()
	if once != nil {
		once.Do(func() { close(ch) })
	}
}

// handleMoveResponse applies a move/keep-alive response to session state
// and runs the limit and sync-error recovery rules.
func (s *Session) handleMoveResponse(f mylifter.Frame) {
	resp, err := mylifter.ParseMoveResponse(f)
	if err != nil {
		s.log.Warn().Err(err).Msg("bad move response")
		return
	}

	s.mu.Lock()
	// The device's position is the truth; the next keep-alive echoes it.
	// That is the entire sync-error recovery: no resync command exists.
	s.lastPos = resp.Position
	s.lastWeight = resp.Weight
	s.lastErr = resp.Error

	var ev *Event
	switch resp.Error {
	case mylifter.ErrNone:
		s.syncStreak = 0

	case mylifter.ErrSync:
		s.syncStreak++
		if s.syncStreak > s.cfg.SyncErrorLimit {
			s.syncStreak = 0
			ev = &Event{Type: EventSyncEscalated, Position: resp.Position, Err: winch.ErrSyncEscalated}
		}

	case mylifter.ErrSoftLimit:
		if !s.limitPaused {
			// Decision point: hold position until the caller stops or
			// overrides. Keep-alives drop to idle stop frames meanwhile.
			s.limitPaused = true
			s.targetMove = mylifter.MoveStop
			s.targetSpeed = 0
			s.kaMode = KeepAliveIdle
			ev = &Event{Type: EventSoftLimit, Position: resp.Position, Err: winch.ErrSoftLimit}
		}

	case mylifter.ErrHardLimit:
		if s.targetMove != mylifter.MoveStop {
			s.targetMove = mylifter.MoveStop
			s.targetSpeed = 0
			s.kaMode = KeepAliveIdle
			ev = &Event{Type: EventHardLimit, Position: resp.Position, Err: winch.ErrHardLimit}
		}
	}
	s.mu.Unlock()

	if ev != nil {
		s.log.Warn().
			Str("event", ev.Type.String()).
			Int32("position", ev.Position).
			Msg("move condition")
		s.emit(*ev)
	}
}
