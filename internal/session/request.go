// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openwinch/winchctl/internal/winch"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

// pendingRequest is the single in-flight request a session may have.
// Responses correlate by command code: the device answers either with the
// same code or with an ACK/NACK naming the code. The correlation key only
// ties log lines together.
type pendingRequest struct {
	code     uint8
	issuedAt time.Time
	key      uuid.UUID
	ch       chan mylifter.Frame
}

// request writes a frame and waits for its correlated response. Requests
// are strictly serialized per session: a second request waits for the
// prior response (or its timeout) before being written. timeout 0 means
// the wait is bounded only by ctx, which the pairing flow relies on.
//
// A NACK is retried once with an identical payload before surfacing.
func (s *Session) request(ctx context.Context, f mylifter.Frame, timeout time.Duration) (mylifter.Frame, error) {
	select {
	case s.reqGate <- struct{}{}:
	case <-ctx.Done():
		return mylifter.Frame{}, ctx.Err()
	}
	defer func() { <-s.reqGate }()

	for attempt := 0; ; attempt++ {
		p := &pendingRequest{
			code:     f.Code,
			issuedAt: time.Now(),
			key:      uuid.New(),
			ch:       make(chan mylifter.Frame, 1),
		}
		s.mu.Lock()
		s.pending = p
		stopCh := s.stopCh
		s.mu.Unlock()

		s.log.Debug().
			Str("request", p.key.String()).
			Str("frame", mylifter.FrameName(f)).
			Msg("tx")

		if err := s.write(f.Encode()); err != nil {
			s.clearPending()
			return mylifter.Frame{}, err
		}

		var timer <-chan time.Time
		if timeout > 0 {
			t := time.NewTimer(timeout)
			defer t.Stop()
			timer = t.C
		}

		select {
		case resp := <-p.ch:
			if resp.Code == mylifter.CmdNack {
				nack, err := mylifter.ParseNack(resp)
				if err != nil {
					return mylifter.Frame{}, err
				}
				if attempt == 0 {
					// One identical retry; recurring NACKs surface
					s.log.Debug().
						Str("request", p.key.String()).
						Uint8("reason", nack.Reason).
						Msg("nack, retrying once")
					continue
				}
				return mylifter.Frame{}, &winch.NackError{Code: nack.AckedCode, Reason: nack.Reason}
			}
			return resp, nil

		case <-timer:
			s.clearPending()
			return mylifter.Frame{}, winch.ErrRequestTimeout

		case <-stopCh:
			s.clearPending()
			return mylifter.Frame{}, winch.ErrNotConnected

		case <-ctx.Done():
			s.clearPending()
			return mylifter.Frame{}, ctx.Err()
		}
	}
}

func (s *Session) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// write puts bytes on the transport, enforcing the minimum spacing after
// every write so keep-alive and command frames never overlap in flight.
func (s *Session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if wait := time.Until(s.nextWrite); wait > 0 {
		time.Sleep(wait)
	}
	err := s.tr.Write(data)
	s.nextWrite = time.Now().Add(s.cfg.MinWriteSpacing)
	if err != nil {
		return winch.TransportError("write", err)
	}
	return nil
}
