// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"context"
	"math"
	"testing"
	"time"
)

// ============================================================
// Scripted Port
// ============================================================

// fakePort answers each Write with the next scripted reply. A nil reply
// leaves the line silent, so the following Read times out.
type fakePort struct {
	replies [][]byte
	pending []byte
	written []string
	baud    int
	timeout time.Duration
	flushed int
}

func newFakePort(replies ...[]byte) *fakePort {
	return &fakePort{replies: replies, baud: InitialBaudRate}
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		return 0, nil
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, string(b))
	if len(p.replies) > 0 {
		p.pending = append(p.pending, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *fakePort) SetBaudRate(rate int) error {
	p.baud = rate
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.pending = nil
	p.flushed++
	return nil
}

func newTestSession(t *testing.T, port *fakePort) *Session {
	t.Helper()
	s, err := NewSession(port)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

// ============================================================
// Frame Builders
// ============================================================

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func ack(code byte) []byte {
	return []byte{code, CR}
}

func bigEndian(v, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// block frames payload with a header and a trailing checksum
func block(class byte, width int, payload []byte) []byte {
	return cat([]byte{preamble0, preamble1, class}, bigEndian(len(payload), width), payload, []byte{Checksum(payload)})
}

// segment frames one screenshot segment; check overrides the checksum
func segment(class byte, payload []byte, check byte) []byte {
	return cat([]byte{preamble0, preamble1, class}, bigEndian(len(payload), SegmentLengthWidth), payload, []byte{check, CR})
}

func fixedFloat(mantissa int16, exponent int8) []byte {
	return []byte{byte(uint16(mantissa) >> 8), byte(uint16(mantissa)), byte(exponent)}
}

// adminRecord builds a record with 0.5/div, 1 ms/div, zero 0,
// resolution 0.01 and 20 µs sample spacing.
func adminRecord(yUnit, xUnit byte, timestamp string) []byte {
	rec := make([]byte, AdminRecordSize)
	rec[1] = yUnit
	rec[2] = xUnit
	copy(rec[3:5], bigEndian(8, 2))
	copy(rec[5:7], bigEndian(10, 2))
	copy(rec[7:10], fixedFloat(5, -1))
	copy(rec[10:13], fixedFloat(1, -3))
	copy(rec[15:18], fixedFloat(0, 0))
	copy(rec[18:21], fixedFloat(-5, -3))
	copy(rec[21:24], fixedFloat(1, -2))
	copy(rec[24:27], fixedFloat(2, -5))
	copy(rec[27:30], fixedFloat(3, 0))
	copy(rec[30:33], fixedFloat(-1, 0))
	copy(rec[33:47], timestamp)
	return rec
}

// sampleBlock builds an unsigned one byte sample block with sentinels
// overload 255, underload 0 and invalid 254.
func sampleBlock(control byte, samples ...byte) []byte {
	groups := len(samples)
	switch control & controlGroupMask {
	case groupTwo, groupAuto:
		groups /= 2
	case groupThree:
		groups /= 3
	}
	return cat([]byte{control, 255, 0, 254}, bigEndian(groups, 2), samples)
}

// waveformReply is the complete answer to a QW command
func waveformReply(admin, samples []byte) []byte {
	return cat(ack('0'),
		block(0x00, AdminLengthWidth, admin), []byte{','},
		block(0x00, SampleLengthWidth, samples), []byte{CR})
}

// ============================================================
// Assertions
// ============================================================

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

var background = context.Background()
