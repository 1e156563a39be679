// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

// Package fleet coordinates up to four winch sessions behind numeric IDs.
// IDs are dense and 1-based: winch 1 is always the first registered winch,
// and removing one renumbers everything after it. Groups name subsets of
// the fleet and follow their members through renumbering.
package fleet

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openwinch/winchctl/internal/session"
	"github.com/openwinch/winchctl/internal/transport"
	"github.com/openwinch/winchctl/internal/winch"
)

// MaxWinches is the most devices one controller instance manages.
const MaxWinches = 4

// Winch couples a protocol session with the operator-facing settings that
// live on the controller rather than on the device.
type Winch struct {
	Session *session.Session

	mu     sync.Mutex
	name   string
	cal    winch.Calibration
	limits winch.SoftLimits
}

// Name returns the operator-assigned display name, falling back to the
// hardware address.
func (w *Winch) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.name != "" {
		return w.name
	}
	return w.Session.Address()
}

// SetName sets the display name kept on the controller.
func (w *Winch) SetName(name string) {
	w.mu.Lock()
	w.name = name
	w.mu.Unlock()
}

// Calibration returns the position calibration for this winch.
func (w *Winch) Calibration() winch.Calibration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cal
}

// SetCalibration stores the position calibration.
func (w *Winch) SetCalibration(cal winch.Calibration) {
	w.mu.Lock()
	w.cal = cal
	w.mu.Unlock()
}

// SoftLimits returns the controller-side travel limits.
func (w *Winch) SoftLimits() winch.SoftLimits {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.limits
}

// SetSoftLimits stores the controller-side travel limits.
func (w *Winch) SetSoftLimits(l winch.SoftLimits) {
	w.mu.Lock()
	w.limits = l
	w.mu.Unlock()
}

// RealPosition converts the last reported position to real-world units.
// It fails when no calibration has been captured; internal counts are
// meaningless as distances without one.
func (w *Winch) RealPosition() (float64, error) {
	cal := w.Calibration()
	if cal.IsIdentity() {
		return 0, winch.ErrCalibrationRequired
	}
	return cal.ToReal(w.Session.Position()), nil
}

// ClampTarget bounds a target position to the controller-side travel
// limits. These are advisory: the clamp applies to position targets, not
// to directional moves, which only the device's own limits can stop.
func (w *Winch) ClampTarget(target int32) int32 {
	l := w.SoftLimits()
	if l.Low != nil && target < *l.Low {
		target = *l.Low
	}
	if l.High != nil && target > *l.High {
		target = *l.High
	}
	return target
}

// MoveTo drives to an internal-unit target, bounded by the configured
// travel limits.
func (w *Winch) MoveTo(ctx context.Context, target int32, speed uint8) error {
	return w.Session.MoveTo(ctx, w.ClampTarget(target), speed)
}

// MoveToReal drives to a real-world target through the calibration.
func (w *Winch) MoveToReal(ctx context.Context, target float64, speed uint8) error {
	cal := w.Calibration()
	if cal.IsIdentity() {
		return winch.ErrCalibrationRequired
	}
	return w.MoveTo(ctx, cal.ToInternal(target), speed)
}

// Manager owns the fleet: registration, numbering, groups and fan-out
// dispatch. All methods are safe for concurrent use.
type Manager struct {
	factory transport.Factory
	cfg     session.Config
	log     zerolog.Logger

	mu      sync.RWMutex
	winches []*Winch // ID = index + 1
	groups  map[string][]*Winch
}

// NewManager creates an empty fleet. factory builds a transport for each
// added winch address.
func NewManager(factory transport.Factory, cfg session.Config, log zerolog.Logger) *Manager {
	return &Manager{
		factory: factory,
		cfg:     cfg,
		log:     log.With().Str("component", "fleet").Logger(),
		groups:  make(map[string][]*Winch),
	}
}

// Add registers a winch and assigns it the next ID. passkey may be nil for
// a device that still needs pairing.
func (m *Manager) Add(address string, passkey []byte) (*Winch, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.winches) >= MaxWinches {
		return nil, 0, fmt.Errorf("fleet full, %d winches maximum", MaxWinches)
	}
	for _, w := range m.winches {
		if w.Session.Address() == address {
			return nil, 0, fmt.Errorf("winch %s already registered", address)
		}
	}

	tr, err := m.factory(address)
	if err != nil {
		return nil, 0, err
	}
	w := &Winch{
		Session: session.New(address, passkey, tr, m.cfg, m.log),
		cal:     winch.Identity,
	}
	m.winches = append(m.winches, w)
	id := len(m.winches)
	m.log.Info().Str("address", address).Int("id", id).Msg("winch registered")
	return w, id, nil
}

// Remove disconnects a winch and drops it from the fleet and every group.
// Winches after it shift down by one ID.
func (m *Manager) Remove(id int) error {
	m.mu.Lock()
	if id < 1 || id > len(m.winches) {
		m.mu.Unlock()
		return &winch.UnknownWinchError{ID: id}
	}
	w := m.winches[id-1]
	m.winches = append(m.winches[:id-1], m.winches[id:]...)
	for name, members := range m.groups {
		kept := members[:0]
		for _, member := range members {
			if member != w {
				kept = append(kept, member)
			}
		}
		if len(kept) == 0 {
			delete(m.groups, name)
		} else {
			m.groups[name] = kept
		}
	}
	m.mu.Unlock()

	m.log.Info().Str("address", w.Session.Address()).Int("id", id).Msg("winch removed")
	return w.Session.Disconnect()
}

// Get resolves an ID to its winch.
func (m *Manager) Get(id int) (*Winch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > len(m.winches) {
		return nil, &winch.UnknownWinchError{ID: id}
	}
	return m.winches[id-1], nil
}

// List returns the fleet in ID order.
func (m *Manager) List() []*Winch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Winch, len(m.winches))
	copy(out, m.winches)
	return out
}

// Count returns the number of registered winches.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.winches)
}

// ID returns the current 1-based ID of a winch, or 0 if it is no longer
// registered. IDs are positional, so this is the lookup the dispatch
// results use after any renumbering.
func (m *Manager) ID(w *Winch) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idLocked(w)
}

func (m *Manager) idLocked(w *Winch) int {
	for i, v := range m.winches {
		if v == w {
			return i + 1
		}
	}
	return 0
}

// SetGroup creates or replaces a named group. Group names must not look
// like ID selectors.
func (m *Manager) SetGroup(name string, ids []int) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "all" || name == "*" || isIDList(name) {
		return fmt.Errorf("invalid group name %q", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	members := make([]*Winch, 0, len(ids))
	seen := make(map[int]bool)
	for _, id := range ids {
		if id < 1 || id > len(m.winches) {
			return &winch.UnknownWinchError{ID: id}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, m.winches[id-1])
	}
	if len(members) == 0 {
		return fmt.Errorf("group %q needs at least one member", name)
	}
	m.groups[name] = members
	return nil
}

// DeleteGroup removes a named group. Member winches are unaffected.
func (m *Manager) DeleteGroup(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[name]; !ok {
		return &winch.UnknownGroupError{Name: name}
	}
	delete(m.groups, name)
	return nil
}

// Groups returns the group names with the current IDs of their members.
func (m *Manager) Groups() map[string][]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]int, len(m.groups))
	for name, members := range m.groups {
		ids := make([]int, 0, len(members))
		for _, w := range members {
			if id := m.idLocked(w); id > 0 {
				ids = append(ids, id)
			}
		}
		sort.Ints(ids)
		out[name] = ids
	}
	return out
}

// StopAll broadcasts an immediate stop to every authenticated winch.
func (m *Manager) StopAll(ctx context.Context) []Result {
	return m.Dispatch(ctx, SelectorAll, func(ctx context.Context, w *Winch) error {
		if w.Session.State() != session.StateAuthenticated {
			return nil
		}
		return w.Session.Stop(ctx)
	})
}

// DisconnectAll tears down every session, last resort errors ignored.
func (m *Manager) DisconnectAll() {
	for _, w := range m.List() {
		if err := w.Session.Disconnect(); err != nil {
			m.log.Warn().Err(err).Str("address", w.Session.Address()).Msg("disconnect failed")
		}
	}
}

// Pair connects the given winch if needed and runs the button-press pairing
// flow, returning the captured passkey.
func (m *Manager) Pair(ctx context.Context, id int) ([]byte, error) {
	w, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := w.Session.Connect(ctx); err != nil {
		return nil, err
	}
	return w.Session.Pair(ctx)
}

// Connect brings one winch to the authenticated state and runs the
// version probes.
func (m *Manager) Connect(ctx context.Context, id int) error {
	w, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := w.Session.Connect(ctx); err != nil {
		return err
	}
	if err := w.Session.Authenticate(ctx); err != nil {
		return err
	}
	w.Session.CheckVersions(ctx)
	return nil
}

func isIDList(s string) bool {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
