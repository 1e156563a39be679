// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrameEncode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  []byte
	}{
		{
			name:  "empty payload",
			frame: Frame{Code: CmdGetStatus},
			want:  []byte{0x34, 0x00},
		},
		{
			name:  "get passkey",
			frame: NewGetPasskey(),
			want:  []byte{0x03, 0x00},
		},
		{
			name:  "move up speed 50 at -4000",
			frame: NewMoveCommand(MoveUp, 50, -4000),
			want:  []byte{0x23, 0x06, 0x01, 0x32, 0x60, 0xF0, 0xFF, 0xFF},
		},
		{
			name:  "stop keep-alive at zero",
			frame: NewMoveCommand(MoveStop, 0, 0),
			want:  []byte{0x23, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:  "set smart point top",
			frame: NewSetSmartPoint(SmartPointTop),
			want:  []byte{0x32, 0x01, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.frame.Encode()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantCode    uint8
		wantPayload []byte
		wantErr     bool
	}{
		{
			name:        "ack for passkey",
			data:        []byte{0x01, 0x01, 0x03},
			wantCode:    CmdAck,
			wantPayload: []byte{0x03},
		},
		{
			name:        "empty payload",
			data:        []byte{0x34, 0x00},
			wantCode:    CmdGetStatus,
			wantPayload: []byte{},
		},
		{
			name:        "trailing padding ignored",
			data:        []byte{0x01, 0x01, 0x03, 0x00, 0x00},
			wantCode:    CmdAck,
			wantPayload: []byte{0x03},
		},
		{
			name:    "empty input",
			data:    nil,
			wantErr: true,
		},
		{
			name:    "one byte",
			data:    []byte{0x23},
			wantErr: true,
		},
		{
			name:    "declared length exceeds data",
			data:    []byte{0x23, 0x08, 0x00, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Decode() succeeded, want error")
				}
				if !errors.Is(err, ErrMalformedFrame) {
					t.Errorf("Decode() error = %v, want ErrMalformedFrame", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if f.Code != tt.wantCode {
				t.Errorf("Code = 0x%02X, want 0x%02X", f.Code, tt.wantCode)
			}
			if !bytes.Equal(f.Payload, tt.wantPayload) {
				t.Errorf("Payload = % X, want % X", f.Payload, tt.wantPayload)
			}
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	setPasskey, err := NewSetPasskey([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02})
	if err != nil {
		t.Fatalf("NewSetPasskey failed: %v", err)
	}
	setName, err := NewSetName("garage-left")
	if err != nil {
		t.Fatalf("NewSetName failed: %v", err)
	}

	frames := []Frame{
		NewGetPasskey(),
		setPasskey,
		NewGetProtocolVersion(),
		NewClearError(),
		NewGetName(0),
		setName,
		NewGetVersion(),
		NewMoveCommand(MoveDown, 100, 12345),
		NewMoveCommand(MoveOverrideUp, 75, -1),
		NewSetSmartPoint(SmartPointReference),
		NewClearSmartPoint(SmartPointBottom),
		NewGetStatus(),
	}

	for _, f := range frames {
		t.Run(FrameName(f), func(t *testing.T) {
			decoded, err := Decode(f.Encode())
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded.Code != f.Code {
				t.Errorf("Code = 0x%02X, want 0x%02X", decoded.Code, f.Code)
			}
			if !bytes.Equal(decoded.Payload, f.Payload) {
				t.Errorf("Payload = % X, want % X", decoded.Payload, f.Payload)
			}
		})
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	data := []byte{0x01, 0x01, 0x03}
	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	data[2] = 0xFF
	if f.Payload[0] != 0x03 {
		t.Error("decoded payload aliases the input buffer")
	}
}
