// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package fleet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openwinch/winchctl/internal/session"
	"github.com/openwinch/winchctl/internal/transport"
	"github.com/openwinch/winchctl/internal/transport/fake"
	"github.com/openwinch/winchctl/internal/winch"
)

func fakeFactory(address string) (transport.Transport, error) {
	return fake.New(), nil
}

func newTestManager(t *testing.T, n int) *Manager {
	t.Helper()
	m := NewManager(fakeFactory, session.DefaultConfig(), zerolog.Nop())
	for i := 0; i < n; i++ {
		addr := fmt.Sprintf("AA:BB:CC:00:00:%02d", i+1)
		if _, id, err := m.Add(addr, nil); err != nil {
			t.Fatalf("Add(%s) failed: %v", addr, err)
		} else if id != i+1 {
			t.Fatalf("Add(%s) assigned ID %d, want %d", addr, id, i+1)
		}
	}
	return m
}

func TestAddAssignsDenseIDs(t *testing.T) {
	m := newTestManager(t, 4)
	if m.Count() != 4 {
		t.Fatalf("Count = %d, want 4", m.Count())
	}
	if _, _, err := m.Add("AA:BB:CC:00:00:05", nil); err == nil {
		t.Error("fifth Add succeeded, want fleet-full error")
	}
	if _, _, err := m.Add("AA:BB:CC:00:00:01", nil); err == nil {
		t.Error("duplicate address accepted")
	}
}

func TestRemoveRenumbers(t *testing.T) {
	m := newTestManager(t, 4)
	w3, _ := m.Get(3)
	w4, _ := m.Get(4)

	if err := m.Remove(2); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// IDs stay dense: the winches after the removed one shift down
	if m.Count() != 3 {
		t.Fatalf("Count = %d, want 3", m.Count())
	}
	if got := m.ID(w3); got != 2 {
		t.Errorf("former winch 3 now has ID %d, want 2", got)
	}
	if got := m.ID(w4); got != 3 {
		t.Errorf("former winch 4 now has ID %d, want 3", got)
	}
	if _, err := m.Get(4); err == nil {
		t.Error("Get(4) succeeded after shrink")
	}

	var unknown *winch.UnknownWinchError
	if err := m.Remove(9); !errors.As(err, &unknown) || unknown.ID != 9 {
		t.Errorf("Remove(9) = %v, want UnknownWinchError{9}", err)
	}
}

func TestGroupsFollowRenumbering(t *testing.T) {
	m := newTestManager(t, 4)
	if err := m.SetGroup("doors", []int{2, 4}); err != nil {
		t.Fatalf("SetGroup failed: %v", err)
	}

	if err := m.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// The same physical winches are still in the group, under new IDs
	groups := m.Groups()
	got := groups["doors"]
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("doors = %v, want [1 3]", got)
	}
}

func TestGroupDroppedWhenEmpty(t *testing.T) {
	m := newTestManager(t, 2)
	if err := m.SetGroup("solo", []int{2}); err != nil {
		t.Fatalf("SetGroup failed: %v", err)
	}
	if err := m.Remove(2); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := m.Groups()["solo"]; ok {
		t.Error("empty group survived member removal")
	}
}

func TestSetGroupValidation(t *testing.T) {
	m := newTestManager(t, 2)
	for _, name := range []string{"", "all", "*", "3", "1,2"} {
		if err := m.SetGroup(name, []int{1}); err == nil {
			t.Errorf("SetGroup(%q) accepted a reserved name", name)
		}
	}
	var unknown *winch.UnknownWinchError
	if err := m.SetGroup("doors", []int{1, 7}); !errors.As(err, &unknown) {
		t.Errorf("SetGroup with bad member = %v, want UnknownWinchError", err)
	}
}

func TestResolve(t *testing.T) {
	m := newTestManager(t, 3)
	if err := m.SetGroup("pair", []int{1, 3}); err != nil {
		t.Fatalf("SetGroup failed: %v", err)
	}

	tests := []struct {
		selector string
		want     []int
		wantErr  bool
	}{
		{"", []int{1}, false},
		{"all", []int{1, 2, 3}, false},
		{"*", []int{1, 2, 3}, false},
		{"2", []int{2}, false},
		{"3,1", []int{1, 3}, false},
		{"1,1,2", []int{1, 2}, false},
		{"pair", []int{1, 3}, false},
		{"PAIR", []int{1, 3}, false},
		{"9", nil, true},
		{"garage", nil, true},
	}
	for _, tt := range tests {
		got, err := m.Resolve(tt.selector)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Resolve(%q) succeeded, want error", tt.selector)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.selector, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tt.selector, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Resolve(%q) = %v, want %v", tt.selector, got, tt.want)
				break
			}
		}
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	m := newTestManager(t, 3)

	boom := errors.New("winch 2 fell over")
	results := m.Dispatch(context.Background(), "all", func(ctx context.Context, w *Winch) error {
		if m.ID(w) == 2 {
			return boom
		}
		return nil
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		switch r.ID {
		case 2:
			if !errors.Is(r.Err, boom) {
				t.Errorf("winch 2 err = %v, want injected failure", r.Err)
			}
		default:
			if r.Err != nil {
				t.Errorf("winch %d err = %v, want success despite winch 2 failing", r.ID, r.Err)
			}
		}
	}
	if err := FirstError(results); !errors.Is(err, boom) {
		t.Errorf("FirstError = %v, want injected failure", err)
	}
}

func TestDispatchBadSelector(t *testing.T) {
	m := newTestManager(t, 1)
	results := m.Dispatch(context.Background(), "nope", func(ctx context.Context, w *Winch) error {
		t.Error("fn called despite bad selector")
		return nil
	})
	var unknown *winch.UnknownGroupError
	if len(results) != 1 || !errors.As(results[0].Err, &unknown) {
		t.Fatalf("results = %+v, want single UnknownGroupError", results)
	}
}

func TestCalibrationTranslation(t *testing.T) {
	m := newTestManager(t, 1)
	w, _ := m.Get(1)

	// No calibration: real-world units are meaningless
	if _, err := w.RealPosition(); !errors.Is(err, winch.ErrCalibrationRequired) {
		t.Fatalf("RealPosition without calibration = %v, want ErrCalibrationRequired", err)
	}
	if err := w.MoveToReal(context.Background(), 10, 50); !errors.Is(err, winch.ErrCalibrationRequired) {
		t.Fatalf("MoveToReal without calibration = %v, want ErrCalibrationRequired", err)
	}

	w.SetCalibration(winch.Calibration{Slope: 2.0, Intercept: 100})
	cal := w.Calibration()
	if got := cal.ToInternal(10); got != 120 {
		t.Errorf("ToInternal(10) = %d, want 120", got)
	}
	if got := cal.ToReal(120); got != 10 {
		t.Errorf("ToReal(120) = %v, want 10", got)
	}
}

func TestClampTarget(t *testing.T) {
	m := newTestManager(t, 1)
	w, _ := m.Get(1)

	if got := w.ClampTarget(-12345); got != -12345 {
		t.Errorf("unlimited clamp changed target: %d", got)
	}

	low, high := int32(-8000), int32(-100)
	w.SetSoftLimits(winch.SoftLimits{Low: &low, High: &high})

	tests := []struct{ in, want int32 }{
		{-9000, -8000},
		{-8000, -8000},
		{-4000, -4000},
		{-100, -100},
		{0, -100},
	}
	for _, tt := range tests {
		if got := w.ClampTarget(tt.in); got != tt.want {
			t.Errorf("ClampTarget(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWinchNameFallsBackToAddress(t *testing.T) {
	m := newTestManager(t, 1)
	w, _ := m.Get(1)
	if got := w.Name(); got != "AA:BB:CC:00:00:01" {
		t.Errorf("Name = %q, want the address", got)
	}
	w.SetName("garage door")
	if got := w.Name(); got != "garage door" {
		t.Errorf("Name = %q, want %q", got, "garage door")
	}
}
