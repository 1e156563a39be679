// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package session

// State is the connection lifecycle state of one winch session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateUnauthenticated
	StateAwaitingButtonPress
	StateAuthenticated
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingButtonPress:
		return "awaiting-button-press"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// KeepAliveMode selects the keep-alive cadence: Idle while stopped, Active
// while any non-stop move code is outstanding.
type KeepAliveMode int

const (
	KeepAliveIdle KeepAliveMode = iota
	KeepAliveActive
)

func (m KeepAliveMode) String() string {
	if m == KeepAliveActive {
		return "active"
	}
	return "idle"
}

// EventType classifies asynchronous session events.
type EventType int

const (
	// EventSoftLimit: movement paused, caller must stop or override.
	EventSoftLimit EventType = iota
	// EventHardLimit: physical end of travel, move terminated.
	EventHardLimit
	// EventSyncEscalated: position echo corrections keep failing.
	EventSyncEscalated
	// EventVersionMismatch: firmware differs from the validated version.
	EventVersionMismatch
	// EventTransportFault: the link failed mid-session.
	EventTransportFault
)

func (t EventType) String() string {
	switch t {
	case EventSoftLimit:
		return "soft-limit"
	case EventHardLimit:
		return "hard-limit"
	case EventSyncEscalated:
		return "sync-escalated"
	case EventVersionMismatch:
		return "version-mismatch"
	case EventTransportFault:
		return "transport-fault"
	default:
		return "unknown"
	}
}

// Event is an asynchronous condition surfaced to the caller alongside the
// normal command results.
type Event struct {
	Type     EventType
	Position int32
	Err      error
}
