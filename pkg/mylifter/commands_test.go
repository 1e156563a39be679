// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"bytes"
	"testing"
)

func TestNewMoveCommand(t *testing.T) {
	tests := []struct {
		name     string
		code     MoveCode
		speed    uint8
		position int32
		want     []byte
	}{
		{
			name:     "up at half speed, negative position",
			code:     MoveUp,
			speed:    50,
			position: -4000,
			want:     []byte{0x01, 0x32, 0x60, 0xF0, 0xFF, 0xFF},
		},
		{
			name:     "stop at zero",
			code:     MoveStop,
			speed:    0,
			position: 0,
			want:     []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "down full speed, positive position",
			code:     MoveDown,
			speed:    100,
			position: 0x01020304,
			want:     []byte{0x02, 0x64, 0x04, 0x03, 0x02, 0x01},
		},
		{
			name:     "override down",
			code:     MoveOverrideDown,
			speed:    80,
			position: -1,
			want:     []byte{0x08, 0x50, 0xFF, 0xFF, 0xFF, 0xFF},
		},
		{
			name:     "speed clamped to 100",
			code:     MoveUp,
			speed:    200,
			position: 0,
			want:     []byte{0x01, 0x64, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewMoveCommand(tt.code, tt.speed, tt.position)
			if f.Code != CmdMove {
				t.Errorf("Code = 0x%02X, want 0x%02X", f.Code, CmdMove)
			}
			if !bytes.Equal(f.Payload, tt.want) {
				t.Errorf("Payload = % X, want % X", f.Payload, tt.want)
			}
		})
	}
}

func TestPasskeyDisambiguation(t *testing.T) {
	get := NewGetPasskey()
	if get.Code != CmdPasskey || len(get.Payload) != 0 {
		t.Errorf("GetPasskey = %s with %d bytes, want 0x03 with empty payload", get, len(get.Payload))
	}
	if FrameName(get) != "GET_PASSKEY" {
		t.Errorf("FrameName(get) = %s, want GET_PASSKEY", FrameName(get))
	}

	set, err := NewSetPasskey([]byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewSetPasskey failed: %v", err)
	}
	if set.Code != CmdPasskey || len(set.Payload) != PasskeySize {
		t.Errorf("SetPasskey = %s with %d bytes, want 0x03 with 6-byte payload", set, len(set.Payload))
	}
	if FrameName(set) != "SET_PASSKEY" {
		t.Errorf("FrameName(set) = %s, want SET_PASSKEY", FrameName(set))
	}
}

func TestNewSetPasskeyRejectsBadLength(t *testing.T) {
	for _, n := range []int{0, 1, 5, 7, 16} {
		if _, err := NewSetPasskey(make([]byte, n)); err == nil {
			t.Errorf("NewSetPasskey accepted %d-byte key", n)
		}
	}
}

func TestNewSetPasskeyCopiesInput(t *testing.T) {
	key := []byte{1, 2, 3, 4, 5, 6}
	f, err := NewSetPasskey(key)
	if err != nil {
		t.Fatalf("NewSetPasskey failed: %v", err)
	}
	key[0] = 0xFF
	if f.Payload[0] != 1 {
		t.Error("frame payload aliases the caller's key")
	}
}

func TestNewSetName(t *testing.T) {
	f, err := NewSetName("workshop")
	if err != nil {
		t.Fatalf("NewSetName failed: %v", err)
	}
	if f.Code != CmdSetName {
		t.Errorf("Code = 0x%02X, want 0x%02X", f.Code, CmdSetName)
	}
	if string(f.Payload) != "workshop" {
		t.Errorf("Payload = %q, want %q", f.Payload, "workshop")
	}

	long := make([]byte, MaxNameSize+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewSetName(string(long)); err == nil {
		t.Error("NewSetName accepted a name over 32 bytes")
	}
}

func TestSmartPointCommands(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		code  uint8
		point uint8
	}{
		{"set reference", NewSetSmartPoint(SmartPointReference), CmdSetSmartPoint, 0},
		{"set top", NewSetSmartPoint(SmartPointTop), CmdSetSmartPoint, 1},
		{"set bottom", NewSetSmartPoint(SmartPointBottom), CmdSetSmartPoint, 2},
		{"clear top", NewClearSmartPoint(SmartPointTop), CmdClearSmartPoint, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.frame.Code != tt.code {
				t.Errorf("Code = 0x%02X, want 0x%02X", tt.frame.Code, tt.code)
			}
			if len(tt.frame.Payload) != 1 || tt.frame.Payload[0] != tt.point {
				t.Errorf("Payload = % X, want [%02X]", tt.frame.Payload, tt.point)
			}
		})
	}
}

func TestEmptyPayloadCommands(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		code  uint8
	}{
		{"get protocol version", NewGetProtocolVersion(), CmdGetProtocolVersion},
		{"clear error", NewClearError(), CmdClearError},
		{"get version", NewGetVersion(), CmdGetVersion},
		{"get status", NewGetStatus(), CmdGetStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.frame.Code != tt.code {
				t.Errorf("Code = 0x%02X, want 0x%02X", tt.frame.Code, tt.code)
			}
			if len(tt.frame.Payload) != 0 {
				t.Errorf("Payload = % X, want empty", tt.frame.Payload)
			}
		})
	}
}
