// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Openwinch Project

package mylifter

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzzRoundTrip encodes random frames and verifies decode reproduces them
func TestFuzzRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		payload := make([]byte, rng.Intn(MaxPayloadSize+1))
		rng.Read(payload)
		f := NewFrame(uint8(rng.Intn(256)), payload)

		decoded, err := Decode(f.Encode())
		if err != nil {
			t.Fatalf("round %d: Decode failed: %v", i, err)
		}
		if decoded.Code != f.Code {
			t.Fatalf("round %d: Code = 0x%02X, want 0x%02X", i, decoded.Code, f.Code)
		}
		if !bytes.Equal(decoded.Payload, f.Payload) {
			t.Fatalf("round %d: payload mismatch", i)
		}
	}
}

// TestFuzzDecodeRandomBytes feeds random byte slices to the decoder and
// verifies it either succeeds or fails with ErrMalformedFrame, never panics
func TestFuzzDecodeRandomBytes(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		data := make([]byte, rng.Intn(64))
		rng.Read(data)

		f, err := Decode(data)
		if err != nil {
			if !errors.Is(err, ErrMalformedFrame) {
				t.Fatalf("round %d: error is not ErrMalformedFrame: %v", i, err)
			}
			continue
		}
		if int(data[1]) != len(f.Payload) {
			t.Fatalf("round %d: declared length %d but payload is %d bytes", i, data[1], len(f.Payload))
		}
	}
}

// TestFuzzTruncatedFrames verifies every truncation of a valid frame is
// rejected cleanly
func TestFuzzTruncatedFrames(t *testing.T) {
	rng := newFuzzRng(t)

	for i := 0; i < 100; i++ {
		payload := make([]byte, 1+rng.Intn(32))
		rng.Read(payload)
		wire := NewFrame(uint8(rng.Intn(256)), payload).Encode()

		// Any truncation leaves the declared length longer than the data
		for cut := 0; cut < len(wire); cut++ {
			if _, err := Decode(wire[:cut]); err == nil {
				t.Fatalf("Decode accepted truncated frame (%d of %d bytes)", cut, len(wire))
			}
		}
	}
}

// TestFuzzFormatterNeverPanics runs the formatter over random frames
func TestFuzzFormatterNeverPanics(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		payload := make([]byte, rng.Intn(40))
		rng.Read(payload)
		f := Frame{Code: uint8(rng.Intn(256)), Payload: payload}
		if s := FormatFrame(f); s == "" {
			t.Fatalf("round %d: empty format output", i)
		}
	}
}
