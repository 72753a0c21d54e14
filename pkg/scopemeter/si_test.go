// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"math"
	"testing"
)

func TestFormatSI(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		precision float64
		unit      string
		want      string
	}{
		{"no precision rounds", 1500, 0, "V", "2 kV"},
		{"milli with precision", 0.0033, 0.0005, "A", "(3.3 ± 0.5) mA"},
		{"zero", 0, 0, "V", "0 V"},
		{"units digits", 12.346, 0.02, "V", "(12.35 ± 0.02) V"},
		{"zero value scales by precision", 0, 0.002, "V", "(0 ± 2) mV"},
		{"negative", -0.0033, 0.0005, "A", "(-3.3 ± 0.5) mA"},
		{"negative precision", 0.0033, -0.0005, "A", "(3.3 ± 0.5) mA"},
		{"precision rounds up", 0.0033, 0.00051, "A", "(3.3 ± 0.6) mA"},
		{"mega", 2.4e6, 0, "Hz", "2 MHz"},
		{"kilo with fine precision", 1234.5, 0.3, "Hz", "(1.2345 ± 0.0003) kHz"},
		{"coarse precision", 1234.5, 300, "Hz", "(1.2 ± 0.3) kHz"},
		{"micro", 4.7e-6, 0, "F", "5 μF"},
		{"clamped above yotta", 1e30, 0, "V", "1000000 YV"},
		{"no unit", 42, 0, "", "42 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSI(tt.value, tt.precision, tt.unit); got != tt.want {
				t.Errorf("FormatSI(%g, %g, %q) = %q, expected %q", tt.value, tt.precision, tt.unit, got, tt.want)
			}
		})
	}
}

func TestFormatSI_NonFinite(t *testing.T) {
	if got := FormatSI(math.Inf(1), 0.1, "V"); got != "+Inf V" {
		t.Errorf("+Inf: %q", got)
	}
	if got := FormatSI(math.NaN(), 0, "A"); got != "NaN A" {
		t.Errorf("NaN: %q", got)
	}
	if got := FormatSI(1500, math.Inf(1), "V"); got != "2 kV" {
		t.Errorf("infinite precision: %q", got)
	}
}

func TestRoundUpPrecision(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.0005, 0.0005},
		{0.00051, 0.0006},
		{0.3, 0.3},
		{12, 20},
		{0.95, 1},
	}
	for _, tt := range tests {
		if got := roundUpPrecision(tt.in); !approxEqual(got, tt.want) {
			t.Errorf("roundUpPrecision(%g) = %g, expected %g", tt.in, got, tt.want)
		}
	}
}
