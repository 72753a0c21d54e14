// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"bytes"
	"errors"
	"testing"
)

// ============================================================
// Reading Metadata Tests
// ============================================================

func TestParseReadings(t *testing.T) {
	reply := "11,1,1,1,2,3,1E-3,21,0,2,2,1,2,5E-2,31,1,2,7,14,1,25E+0\r"
	readings, err := ParseReadings(bytes.NewReader([]byte(reply)))
	if err != nil {
		t.Fatalf("ParseReadings failed: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("got %d readings, expected 2 valid", len(readings))
	}

	r := readings[0]
	if r.ID != 11 || !r.Valid || r.Source != 1 || r.Unit != 1 || r.Type != 2 || r.Precision != 3 {
		t.Errorf("unexpected reading %+v", r)
	}
	if !approxEqual(r.Resolution, 1e-3) {
		t.Errorf("Resolution = %g", r.Resolution)
	}
	if r.Name() != "Reading 1" || r.SourceName() != "Input A" || r.TypeName() != "RMS" || r.UnitName() != "V" {
		t.Errorf("names: %q %q %q %q", r.Name(), r.SourceName(), r.TypeName(), r.UnitName())
	}

	r = readings[1]
	if r.ID != 31 || r.UnitName() != "s" || r.TypeName() != "Phase" || !approxEqual(r.Resolution, 25) {
		t.Errorf("unexpected reading %+v", r)
	}
}

func TestParseReadings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{"truncated", "11,1,1,1", ErrTimeout},
		{"wrong separator", "11;1,1,1,2,3,1E-3\r", ErrSeparatorMismatch},
		{"missing exponent", "11,1,1,1,2,3,0.001\r", ErrSeparatorMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseReadings(bytes.NewReader([]byte(tt.reply))); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadingNames_Unknown(t *testing.T) {
	r := Reading{ID: 99, Source: 77, Unit: 500, Type: -1}
	if r.Name() != "Reading 99" || r.SourceName() != "Source 77" || r.UnitName() != "" || r.TypeName() != "" {
		t.Errorf("names: %q %q %q %q", r.Name(), r.SourceName(), r.UnitName(), r.TypeName())
	}
}

func TestSessionReadings(t *testing.T) {
	port := newFakePort(cat(ack('0'), []byte("11,1,1,1,2,3,1E-3\r")))
	s := newTestSession(t, port)

	readings, err := s.Readings(background)
	if err != nil {
		t.Fatalf("Readings failed: %v", err)
	}
	if len(readings) != 1 || port.written[0] != "QM\r" {
		t.Errorf("got %v after writing %q", readings, port.written)
	}
}

func TestSessionReadValue(t *testing.T) {
	port := newFakePort(cat(ack('0'), []byte("-123E-2\r")))
	s := newTestSession(t, port)

	v, err := s.ReadValue(background, 11)
	if err != nil {
		t.Fatalf("ReadValue failed: %v", err)
	}
	if !approxEqual(v, -1.23) {
		t.Errorf("value = %g", v)
	}
	if port.written[0] != "QM 11\r" {
		t.Errorf("wrote %q", port.written[0])
	}

	s = newTestSession(t, newFakePort(cat(ack('0'), []byte("123E-2,"))))
	if _, err := s.ReadValue(background, 11); !errors.Is(err, ErrSeparatorMismatch) {
		t.Errorf("expected ErrSeparatorMismatch, got %v", err)
	}
}

func TestSelectReading(t *testing.T) {
	readings := []Reading{{ID: 11}, {ID: 21}, {ID: 31}}

	tests := []struct {
		letter  byte
		want    int
		wantErr bool
	}{
		{'a', 11, false},
		{'c', 31, false},
		{'B', 21, false},
		{'d', 0, true},
		{'1', 0, true},
	}
	for _, tt := range tests {
		r, err := SelectReading(readings, tt.letter)
		if tt.wantErr {
			if !errors.Is(err, ErrSelectionOutOfRange) {
				t.Errorf("%q: expected ErrSelectionOutOfRange, got %v", tt.letter, err)
			}
			continue
		}
		if err != nil || r.ID != tt.want {
			t.Errorf("%q: got %d, %v", tt.letter, r.ID, err)
		}
	}

	if _, err := SelectReading(nil, 'a'); !errors.Is(err, ErrSelectionOutOfRange) {
		t.Errorf("empty list: expected ErrSelectionOutOfRange, got %v", err)
	}
}

// ============================================================
// Combination Tests
// ============================================================

func TestCombine(t *testing.T) {
	volts := func(v, p float64) Result { return Result{Value: v, Precision: p, Unit: "V", Source: "Input A"} }
	amps := func(v, p float64) Result { return Result{Value: v, Precision: p, Unit: "A", Source: "Input B"} }

	tests := []struct {
		name      string
		a, b      Result
		op        Operator
		value     float64
		precision float64
		unit      string
		source    string
	}{
		{"sum", volts(1, 0.1), volts(2, 0.2), OpAdd, 3, 0.3, "V", "Input A"},
		{"difference", volts(1, 0.1), volts(2, 0.2), OpSub, -1, 0.3, "V", "Input A"},
		{"square", volts(2, 0.1), volts(3, 0.3), OpMul, 6, 0.9, "V²", "Input A"},
		{"product", volts(2, 0.1), amps(3, 0.3), OpMul, 6, 0.9, "V·A", "Input A, Input B"},
		{"ratio", volts(1, 0.1), volts(4, 0.4), OpDiv, 25, 5, "%", "Input A"},
		{"quotient", volts(-2, 0.1), amps(4, 0.4), OpDiv, -0.5, 0.075, "V/A", "Input A, Input B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Combine(tt.a, tt.b, tt.op)
			if err != nil {
				t.Fatalf("Combine failed: %v", err)
			}
			if !approxEqual(r.Value, tt.value) || !approxEqual(r.Precision, tt.precision) {
				t.Errorf("got %g ± %g, expected %g ± %g", r.Value, r.Precision, tt.value, tt.precision)
			}
			if r.Unit != tt.unit || r.Source != tt.source {
				t.Errorf("got unit %q source %q", r.Unit, r.Source)
			}
		})
	}
}

func TestCombine_Errors(t *testing.T) {
	v := Result{Value: 1, Unit: "V"}
	a := Result{Value: 1, Unit: "A"}
	zero := Result{Value: 0, Unit: "V"}

	if _, err := Combine(v, a, OpAdd); !errors.Is(err, ErrUnitMismatch) {
		t.Errorf("add: expected ErrUnitMismatch, got %v", err)
	}
	if _, err := Combine(v, a, OpSub); !errors.Is(err, ErrUnitMismatch) {
		t.Errorf("sub: expected ErrUnitMismatch, got %v", err)
	}
	if _, err := Combine(v, zero, OpDiv); !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("div: expected ErrInvalidOperand, got %v", err)
	}
	if _, err := Combine(zero, v, OpMul); !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("mul: expected ErrInvalidOperand, got %v", err)
	}
	if _, err := Combine(v, v, Operator(9)); !errors.Is(err, ErrSelectionOutOfRange) {
		t.Errorf("unknown: expected ErrSelectionOutOfRange, got %v", err)
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator(OpMul)
	if acc.Need() != 2 || acc.Operator() != OpMul {
		t.Fatalf("Need = %d", acc.Need())
	}
	if _, err := acc.Result(); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("expected ErrProtocolViolation before operands, got %v", err)
	}

	acc.Push(Result{Value: 2, Precision: 0.2, Unit: "V"})
	acc.Push(Result{Value: 0.5, Precision: 0.05, Unit: "A"})
	if err := acc.Push(Result{Value: 1}); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("expected ErrProtocolViolation for a third operand, got %v", err)
	}

	r, err := acc.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if !approxEqual(r.Value, 1) || !approxEqual(r.Precision, 0.2) || r.Unit != "V·A" {
		t.Errorf("got %+v", r)
	}

	single := NewAccumulator(OpSingle)
	single.Push(Result{Value: 3, Unit: "Hz", Title: "line"})
	r, err = single.Result()
	if err != nil || r.Value != 3 || r.Title != "line" {
		t.Errorf("single: got %+v, %v", r, err)
	}
}

func TestResultFromReading(t *testing.T) {
	r := ResultFromReading(Reading{ID: 11, Source: 2, Unit: 2, Resolution: 0.0005}, 0.0033)
	if r.Unit != "A" || r.Source != "Input B" || r.Precision != 0.0005 {
		t.Errorf("got %+v", r)
	}
	if r.String() != "(3.3 ± 0.5) mA" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestOperators(t *testing.T) {
	names := []string{"single", "first + second", "first - second", "first * second", "first / second"}
	for i, op := range Operators() {
		if op.String() != names[i] {
			t.Errorf("operator %d = %q", i, op)
		}
	}
	if OpSingle.Operands() != 1 || OpDiv.Operands() != 2 {
		t.Error("unexpected operand counts")
	}
}
