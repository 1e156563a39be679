// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package session implements the per-winch protocol session: the passkey
// handshake, request/response correlation, the keep-alive loop with its
// mandatory position echo, and limit/sync error recovery.
//
// One Session owns one physical winch. Sessions run their own keep-alive
// goroutine and never share state; multi-winch coordination lives in
// internal/fleet.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openwinch/winchctl/internal/transport"
	"github.com/openwinch/winchctl/internal/winch"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

// Config holds the session timing parameters.
type Config struct {
	// ResponseTimeout bounds the wait for a command response.
	ResponseTimeout time.Duration
	// IdleCadence is the keep-alive period while stopped.
	IdleCadence time.Duration
	// ActiveCadence is the keep-alive period while moving.
	ActiveCadence time.Duration
	// MinWriteSpacing is enforced after every write regardless of cadence,
	// so in-flight writes never overlap on the transport.
	MinWriteSpacing time.Duration
	// SyncErrorLimit is the number of consecutive sync errors tolerated
	// before the condition escalates.
	SyncErrorLimit int
	// StallTimeout bounds how long MoveTo waits without position change.
	StallTimeout time.Duration
}

// DefaultConfig returns the timing parameters validated against real
// hardware. The 200 ms device watchdog leaves headroom at these cadences.
func DefaultConfig() Config {
	return Config{
		ResponseTimeout: time.Second,
		IdleCadence:     250 * time.Millisecond,
		ActiveCadence:   100 * time.Millisecond,
		MinWriteSpacing: 20 * time.Millisecond,
		SyncErrorLimit:  3,
		StallTimeout:    3 * time.Second,
	}
}

// Session is the protocol state machine for one winch.
type Session struct {
	address string
	tr      transport.Transport
	cfg     Config
	log     zerolog.Logger

	mu            sync.Mutex
	state         State
	passkey       []byte
	lastPos       int32
	lastErr       mylifter.ErrorCode
	lastWeight    uint16
	targetMove    mylifter.MoveCode
	targetSpeed   uint8
	kaMode        KeepAliveMode
	limitPaused   bool
	syncStreak    int
	warnedVersion bool
	pending       *pendingRequest
	kaRunning     bool
	stopCh        chan struct{}
	stopOnce      *sync.Once
	authedCh      chan struct{}
	authedOnce    *sync.Once

	// Write pacing, separate from mu so state reads never wait on I/O
	writeMu   sync.Mutex
	nextWrite time.Time

	reqGate chan struct{}
	frames  chan mylifter.Frame
	events  chan Event
}

// New creates a session for the given winch address. passkey may be nil
// for an unpaired device.
func New(address string, passkey []byte, tr transport.Transport, cfg Config, log zerolog.Logger) *Session {
	s := &Session{
		address: address,
		tr:      tr,
		cfg:     cfg,
		log:     log.With().Str("winch", address).Logger(),
		state:   StateDisconnected,
		reqGate: make(chan struct{}, 1),
		events:  make(chan Event, 16),
	}
	if len(passkey) == mylifter.PasskeySize {
		s.passkey = append([]byte(nil), passkey...)
	}
	return s
}

// Address returns the winch hardware address.
func (s *Session) Address() string {
	return s.address
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Position returns the last device-reported position.
func (s *Session) Position() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPos
}

// LastError returns the last device-reported move error code.
func (s *Session) LastError() mylifter.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Weight returns the last device-reported load.
func (s *Session) Weight() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWeight
}

// Mode returns the current keep-alive cadence mode.
func (s *Session) Mode() KeepAliveMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kaMode
}

// AwaitingOverride reports whether movement is paused at a soft limit,
// waiting for the caller to stop or override.
func (s *Session) AwaitingOverride() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limitPaused
}

// Passkey returns the session's passkey, or nil before pairing.
func (s *Session) Passkey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passkey == nil {
		return nil
	}
	return append([]byte(nil), s.passkey...)
}

// Events returns the asynchronous event stream. Events are dropped, not
// blocked on, when the consumer falls behind.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Connect establishes the transport link and notification subscription.
// On failure the session returns to Disconnected; reconnecting is the
// caller's decision, not this layer's.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected && s.state != StateError {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.stopCh = make(chan struct{})
	s.stopOnce = &sync.Once{}
	s.authedCh = make(chan struct{})
	s.authedOnce = &sync.Once{}
	s.frames = make(chan mylifter.Frame, 32)
	s.kaRunning = false
	s.limitPaused = false
	s.syncStreak = 0
	s.warnedVersion = false
	s.targetMove = mylifter.MoveStop
	s.targetSpeed = 0
	s.kaMode = KeepAliveIdle
	stopCh := s.stopCh
	frames := s.frames
	s.mu.Unlock()

	s.tr.OnNotification(s.handleNotification)
	if err := s.tr.Connect(ctx); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return winch.TransportError("connect", err)
	}

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.mu.Unlock()
	s.log.Info().Msg("connected")

	go s.dispatchLoop(frames, stopCh)
	return nil
}

// Disconnect stops the keep-alive loop and tears down the link.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	stopOnce, stopCh := s.stopOnce, s.stopCh
	s.state = StateDisconnected
	s.kaRunning = false
	s.mu.Unlock()

	if stopOnce != nil {
		stopOnce.Do(func() { close(stopCh) })
	}
	if err := s.tr.Disconnect(); err != nil {
		return winch.TransportError("disconnect", err)
	}
	s.log.Info().Msg("disconnected")
	return nil
}

// Pair runs the physical-button pairing flow: a get-passkey request is
// written and the device stays silent until an operator presses the button.
// The wait is bounded only by ctx; cancel or set a deadline to give up,
// which fails with ErrPairingTimeout.
func (s *Session) Pair(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.state != StateUnauthenticated {
		st := s.state
		s.mu.Unlock()
		if st == StateDisconnected || st == StateConnecting {
			return nil, winch.ErrNotConnected
		}
		return nil, winch.ErrNotAuthenticated
	}
	s.state = StateAwaitingButtonPress
	s.mu.Unlock()
	s.log.Info().Msg("pairing: waiting for button press")

	resp, err := s.request(ctx, mylifter.NewGetPasskey(), 0)

	s.mu.Lock()
	if s.state == StateAwaitingButtonPress {
		s.state = StateUnauthenticated
	}
	s.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return nil, winch.ErrPairingTimeout
		}
		return nil, err
	}

	key, err := mylifter.ParsePasskey(resp)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.passkey = append([]byte(nil), key...)
	s.mu.Unlock()
	s.log.Info().Msg("pairing: passkey received")
	return key, nil
}

// Authenticate sends the stored passkey and starts the keep-alive loop.
// The device has a strict watchdog, so keep-alives begin as soon as the
// passkey is on the wire. The session counts as authenticated on the
// passkey ACK or on the first answered keep-alive, whichever arrives first.
func (s *Session) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateAuthenticated {
		s.mu.Unlock()
		return nil
	}
	if s.state != StateUnauthenticated {
		s.mu.Unlock()
		return winch.ErrNotConnected
	}
	if s.passkey == nil {
		s.mu.Unlock()
		return winch.ErrNoPasskey
	}
	frame, err := mylifter.NewSetPasskey(s.passkey)
	authedCh := s.authedCh
	stopCh := s.stopCh
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.write(frame.Encode()); err != nil {
		return err
	}
	s.startKeepAlive()

	timer := time.NewTimer(s.cfg.ResponseTimeout * 3)
	defer timer.Stop()
	select {
	case <-authedCh:
	case <-timer.C:
		return winch.ErrNotAuthenticated
	case <-stopCh:
		return winch.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.mu.Unlock()
	s.log.Info().Msg("authenticated")
	return nil
}

// fault drops the session into the error state and stops its loops.
func (s *Session) fault(err error) {
	s.mu.Lock()
	if s.state == StateError {
		s.mu.Unlock()
		return
	}
	s.state = StateError
	s.kaRunning = false
	pos := s.lastPos
	stopOnce, stopCh := s.stopOnce, s.stopCh
	s.mu.Unlock()

	s.log.Error().Err(err).Msg("session fault")
	s.emit(Event{Type: EventTransportFault, Position: pos, Err: err})
	if stopOnce != nil {
		stopOnce.Do(func() { close(stopCh) })
	}
}

// emit delivers an event without blocking; stale events are dropped.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Debug().Str("event", ev.Type.String()).Msg("event dropped, consumer behind")
	}
}
