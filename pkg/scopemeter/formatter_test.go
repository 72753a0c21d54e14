// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"bytes"
	"math"
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		channel string
		kind    TraceKind
		xUnit   string
		yUnit   string
		want    string
	}{
		{ChannelA, KindTrace, "s", "V", "2024-03-05-14-07-09_input-A_trace_s-vs-V.dat"},
		{ChannelBoth, PowerKind(KindAverage), "s", "W", "2024-03-05-14-07-09_input-both_average-power_s-vs-W.dat"},
		{ChannelA, KindPSD, "Hz", UnitVolt2Hz, "2024-03-05-14-07-09_input-A_psd_Hz-vs-V²perHz.dat"},
	}
	for _, tt := range tests {
		w := &Waveform{Channel: tt.channel, Kind: tt.kind, XUnit: tt.xUnit, YUnit: tt.yUnit, Timestamp: testTime}
		if got := FileName(w); got != tt.want {
			t.Errorf("FileName = %q, expected %q", got, tt.want)
		}
	}
}

func TestWriteData(t *testing.T) {
	w := &Waveform{
		XZero:   -1,
		DeltaX:  0.5,
		Samples: SampleMatrix{{1, math.Inf(1)}, {math.NaN(), -2}, {math.Inf(-1), 1234.5}},
	}

	var buf bytes.Buffer
	if err := WriteData(&buf, w); err != nil {
		t.Fatalf("WriteData failed: %v", err)
	}

	expected := "-1.00000e+00 1.00000e+00 inf\n" +
		"-5.00000e-01 nan -2.00000e+00\n" +
		"0.00000e+00 -inf 1.23450e+03\n"
	if buf.String() != expected {
		t.Errorf("WriteData wrote\n%s\nexpected\n%s", buf.String(), expected)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{2.25, "2.250 seconds"},
		{75.5, "1 minutes, 15.500 seconds (75.500 seconds)"},
		{3600, "1 hours, 0.000 seconds (3600.000 seconds)"},
		{90061, "1 days, 1 hours, 1 minutes, 1.000 seconds (90061.000 seconds)"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.seconds); got != tt.want {
			t.Errorf("FormatSeconds(%g) = %q, expected %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatWaveformDetails(t *testing.T) {
	w := &Waveform{
		Channel:   ChannelB,
		Kind:      KindTrend,
		XUnit:     "s",
		YUnit:     "A",
		DeltaX:    0.5,
		Timestamp: testTime,
		Samples:   make(SampleMatrix, 150),
	}

	expected := [][2]string{
		{"Channel", "B"},
		{"Trace Type", "trend"},
		{"Units", "s vs A"},
		{"Timestamp", "14:07:09 on March 05, 2024"},
		{"Size", "150"},
		{"Span", "1 minutes, 15.000 seconds (75.000 seconds)"},
		{"Spacing", "500 ms"},
	}
	got := FormatWaveformDetails(w)
	if len(got) != len(expected) {
		t.Fatalf("got %v", got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("row %d = %v, expected %v", i, got[i], expected[i])
		}
	}

	w.XUnit = UnitHertz
	if len(FormatWaveformDetails(w)) != 6 {
		t.Error("span is only shown for time axes")
	}
}

func TestFormatReadingAndIdentity(t *testing.T) {
	reading := FormatReading(Reading{ID: 11, Source: 1, Unit: 1, Type: 11, Resolution: 0.002})
	if reading[0][1] != "Input A" || reading[1][1] != "Frequency" || reading[2][1] != "V" || reading[3][1] != "2 mV" {
		t.Errorf("FormatReading = %v", reading)
	}

	id := FormatIdentity(Identity{
		Model:     "FLUKE 199C",
		Firmware:  "V01.15",
		BuildDate: time.Date(2003, 5, 2, 0, 0, 0, 0, time.UTC),
		Languages: "ENGLISH",
	})
	if id[2][1] != "May 02, 2003" || id[0][1] != "FLUKE 199C" {
		t.Errorf("FormatIdentity = %v", id)
	}
}
