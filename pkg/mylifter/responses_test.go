// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"bytes"
	"testing"
)

func TestParseMoveResponse(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		want    MoveResponse
		wantErr bool
	}{
		{
			name:  "idle at negative position",
			frame: Frame{Code: CmdMove, Payload: []byte{0x01, 0x00, 0x60, 0xF0, 0xFF, 0xFF, 0x10, 0x00}},
			want:  MoveResponse{Status: 1, Error: ErrNone, Position: -4000, Weight: 16},
		},
		{
			name:  "soft limit",
			frame: Frame{Code: CmdMove, Payload: []byte{0x01, 0x81, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00}},
			want:  MoveResponse{Status: 1, Error: ErrSoftLimit, Position: 4096, Weight: 0},
		},
		{
			name:  "sync error",
			frame: Frame{Code: CmdMove, Payload: []byte{0x00, 0x09, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00}},
			want:  MoveResponse{Status: 0, Error: ErrSync, Position: -1, Weight: 0},
		},
		{
			name:    "short payload",
			frame:   Frame{Code: CmdMove, Payload: []byte{0x01, 0x00, 0x60}},
			wantErr: true,
		},
		{
			name:    "wrong code",
			frame:   Frame{Code: CmdAck, Payload: make([]byte, 8)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoveResponse(tt.frame)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseMoveResponse succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoveResponse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMoveResponse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAckNack(t *testing.T) {
	ack, err := ParseAck(Frame{Code: CmdAck, Payload: []byte{CmdPasskey}})
	if err != nil {
		t.Fatalf("ParseAck failed: %v", err)
	}
	if ack.AckedCode != CmdPasskey {
		t.Errorf("AckedCode = 0x%02X, want 0x%02X", ack.AckedCode, CmdPasskey)
	}

	if _, err := ParseAck(Frame{Code: CmdAck}); err == nil {
		t.Error("ParseAck accepted empty payload")
	}

	nack, err := ParseNack(Frame{Code: CmdNack, Payload: []byte{CmdMove, 0x02}})
	if err != nil {
		t.Fatalf("ParseNack failed: %v", err)
	}
	if nack.AckedCode != CmdMove || nack.Reason != 0x02 {
		t.Errorf("Nack = %+v, want {AckedCode: 0x23, Reason: 0x02}", nack)
	}

	if _, err := ParseNack(Frame{Code: CmdNack, Payload: []byte{CmdMove}}); err == nil {
		t.Error("ParseNack accepted 1-byte payload")
	}
}

func TestParsePasskey(t *testing.T) {
	key := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	got, err := ParsePasskey(Frame{Code: CmdPasskey, Payload: key})
	if err != nil {
		t.Fatalf("ParsePasskey failed: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Errorf("ParsePasskey = % X, want % X", got, key)
	}

	// An empty 0x03 frame is a get request, not a passkey delivery
	if _, err := ParsePasskey(Frame{Code: CmdPasskey}); err == nil {
		t.Error("ParsePasskey accepted empty payload")
	}
}

func TestParseProtocolVersion(t *testing.T) {
	tests := []struct {
		name      string
		b         byte
		major     uint8
		minor     uint8
		wantKnown bool
	}{
		{"v3.1", 0x31, 3, 1, true},
		{"v3.2", 0x32, 3, 2, true},
		{"v4.0 unknown", 0x40, 4, 0, false},
		{"v1.15 unknown", 0x1F, 1, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseProtocolVersion(Frame{Code: CmdGetProtocolVersion, Payload: []byte{tt.b}})
			if err != nil {
				t.Fatalf("ParseProtocolVersion failed: %v", err)
			}
			if v.Major != tt.major || v.Minor != tt.minor {
				t.Errorf("version = %s, want %d.%d", v, tt.major, tt.minor)
			}
			if v.Known() != tt.wantKnown {
				t.Errorf("Known() = %v, want %v", v.Known(), tt.wantKnown)
			}
		})
	}
}

func TestParseFirmwareVersion(t *testing.T) {
	// Major at offset 7, minor at offset 6
	payload := []byte{0, 0, 0, 0, 0, 0, 2, 3}
	v, err := ParseFirmwareVersion(Frame{Code: CmdGetVersion, Payload: payload})
	if err != nil {
		t.Fatalf("ParseFirmwareVersion failed: %v", err)
	}
	if v.Major != 3 || v.Minor != 2 {
		t.Errorf("version = %s, want 3.2", v)
	}
	if !v.KnownGood() {
		t.Error("KnownGood() = false for the validated version")
	}

	if _, err := ParseFirmwareVersion(Frame{Code: CmdGetVersion, Payload: payload[:7]}); err == nil {
		t.Error("ParseFirmwareVersion accepted 7-byte payload")
	}
}

func TestParseStatus(t *testing.T) {
	payload := []byte{
		0xE7, 0x00, // cycles = 231
		0xD9, 0x07, 0x00, 0x00, // time = 2009
		0x0A, 0x00, // min temp = 10
		0x28, 0x00, // max temp = 40
		0x05, 0x00, // resets = 5
		0x02, 0x00, // errors = 2
		0x00, 0x04, 0x00, 0x00, // classes bit 10 = sync timeout
	}
	s, err := ParseStatus(Frame{Code: CmdGetStatus, Payload: payload})
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	want := Status{
		TotalCycles:  231,
		TotalTime:    2009,
		MinTemp:      10,
		MaxTemp:      40,
		ResetCount:   5,
		ErrorCount:   2,
		ErrorClasses: 1 << 10,
	}
	if s != want {
		t.Errorf("ParseStatus = %+v, want %+v", s, want)
	}
}

func TestParseName(t *testing.T) {
	name, err := ParseName(Frame{Code: CmdGetName, Payload: []byte("garage\x00\x00")})
	if err != nil {
		t.Fatalf("ParseName failed: %v", err)
	}
	if name != "garage" {
		t.Errorf("ParseName = %q, want %q", name, "garage")
	}
}
