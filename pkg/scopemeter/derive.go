// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"context"
	"fmt"
	"math"
)

// Channel names
const (
	ChannelA    = "A"
	ChannelB    = "B"
	ChannelBoth = "both"
)

// SplitAverageGlitch classifies a trace record. Two slots per group hold
// either the same averaged value twice, collapsed here to one slot of kind
// average, or distinct glitch-capture values, kept as kind glitch. Other
// records are plain traces.
func SplitAverageGlitch(w *Waveform) *Waveform {
	out := w.clone()
	if out.Samples.Slots() != 2 {
		out.Kind = KindTrace
		return out
	}

	for _, row := range out.Samples {
		if row[0] != row[1] {
			out.Kind = KindGlitch
			return out
		}
	}

	for i, row := range out.Samples {
		out.Samples[i] = row[:1]
	}
	out.Kind = KindAverage
	out.Averaged = true
	return out
}

// Power multiplies a voltage waveform by a current waveform captured at
// the same time with the same record kind.
func Power(voltage, current *Waveform) (*Waveform, error) {
	if !voltage.Timestamp.Equal(current.Timestamp) {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"a": voltage.Timestamp, "b": current.Timestamp},
			"power needs simultaneous waveforms, got %s and %s",
			voltage.Timestamp.Format("15:04:05"), current.Timestamp.Format("15:04:05"))
	}
	if voltage.YUnit != UnitVolt || current.YUnit != UnitAmpere {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"a": voltage.YUnit, "b": current.YUnit},
			"power needs V on channel A and A on channel B, got %q and %q", voltage.YUnit, current.YUnit)
	}
	if voltage.Kind != current.Kind {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"a": voltage.Kind, "b": current.Kind},
			"trace kinds differ: %s and %s", voltage.Kind, current.Kind)
	}
	if voltage.Samples.Slots() != 1 || current.Samples.Slots() != 1 {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"a": voltage.Samples.Slots(), "b": current.Samples.Slots()},
			"power needs single slot waveforms (glitch capture on?)")
	}
	if voltage.Samples.Rows() != current.Samples.Rows() {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"a": voltage.Samples.Rows(), "b": current.Samples.Rows()},
			"sample counts differ: %d and %d", voltage.Samples.Rows(), current.Samples.Rows())
	}

	out := &Waveform{
		Channel:    ChannelBoth,
		Kind:       PowerKind(voltage.Kind),
		YUnit:      UnitWatt,
		XUnit:      voltage.XUnit,
		YDivisions: voltage.YDivisions,
		XDivisions: voltage.XDivisions,
		YScale:     voltage.YScale * current.YScale,
		XScale:     voltage.XScale,
		XZero:      voltage.XZero,
		YAtOrigin:  voltage.YAtOrigin * current.YAtOrigin,
		XAtOrigin:  voltage.XAtOrigin,
		DeltaX:     voltage.DeltaX,
		Timestamp:  voltage.Timestamp,
		Averaged:   voltage.Averaged,
		Samples:    make(SampleMatrix, voltage.Samples.Rows()),
	}
	for i := range out.Samples {
		out.Samples[i] = []float64{voltage.Samples[i][0] * current.Samples[i][0]}
	}
	return out, nil
}

// PSD computes the power spectral density of a single slot waveform
func PSD(w *Waveform) (*Waveform, error) {
	if w.Samples.Slots() != 1 {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"slots": w.Samples.Slots()},
			"psd needs a single slot waveform, got %d slots", w.Samples.Slots())
	}
	if w.DeltaX <= 0 {
		return nil, newError(KindInvalidOperand,
			map[string]interface{}{"delta_x": w.DeltaX},
			"psd needs a positive sample spacing, got %g", w.DeltaX)
	}

	freqs, density, err := Welch(w.Samples.Column(0), 1/w.DeltaX, WelchSegmentLength)
	if err != nil {
		return nil, err
	}

	out := &Waveform{
		Channel:   ChannelA,
		Kind:      KindPSD,
		YUnit:     UnitVolt2Hz,
		XUnit:     UnitHertz,
		XZero:     freqs[0],
		Timestamp: w.Timestamp,
		Samples:   make(SampleMatrix, len(density)),
	}
	if w.YUnit == UnitWatt {
		out.YUnit = UnitWattHz
		out.Channel = ChannelBoth
	}
	if len(freqs) > 1 {
		out.DeltaX = (freqs[len(freqs)-1] - freqs[0]) / float64(len(freqs)-1)
	}
	for i, p := range density {
		out.Samples[i] = []float64{p}
	}
	return out, nil
}

// Acquisition selects which records are captured and how they are combined
type Acquisition int

// Acquisition modes
const (
	SingleTrace Acquisition = iota
	SinglePSD
	SingleEnvelope
	SingleTrend
	DualTrace
	DualPSD
	DualEnvelope
	DualTrend
	DualPower
)

var acquisitionNames = [...]string{
	"single trace",
	"single psd",
	"single envelope",
	"single trend",
	"dual trace",
	"dual psd",
	"dual envelope",
	"dual trend",
	"dual power",
}

func (a Acquisition) String() string {
	if a >= 0 && int(a) < len(acquisitionNames) {
		return acquisitionNames[a]
	}
	return fmt.Sprintf("acquisition %d", int(a))
}

// Acquisitions lists every acquisition mode in menu order
func Acquisitions() []Acquisition {
	modes := make([]Acquisition, len(acquisitionNames))
	for i := range modes {
		modes[i] = Acquisition(i)
	}
	return modes
}

// Channels returns the number of inputs the mode reads
func (a Acquisition) Channels() int {
	if a >= DualTrace {
		return 2
	}
	return 1
}

// RecordKind returns the kind of record requested from the instrument
func (a Acquisition) RecordKind() TraceKind {
	switch a {
	case SingleEnvelope, DualEnvelope:
		return KindEnvelope
	case SingleTrend, DualTrend:
		return KindTrend
	default:
		return KindTrace
	}
}

// Capture acquires the records for mode and applies its derivations
func (s *Session) Capture(ctx context.Context, mode Acquisition) ([]*Waveform, error) {
	if mode < SingleTrace || mode > DualPower {
		return nil, newError(KindSelectionOutOfRange,
			map[string]interface{}{"mode": int(mode)}, "unknown acquisition mode %d", int(mode))
	}

	kind := mode.RecordKind()
	channels := []string{ChannelA, ChannelB}
	waveforms := make([]*Waveform, 0, mode.Channels())

	for i := 0; i < mode.Channels(); i++ {
		w, err := s.Waveform(ctx, WaveformSource(i+1, kind), kind)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", channels[i], err)
		}
		w.Channel = channels[i]
		if kind == KindTrace {
			w = SplitAverageGlitch(w)
		}
		waveforms = append(waveforms, w)
	}

	if mode == DualPower || mode == DualPSD {
		p, err := Power(waveforms[0], waveforms[1])
		if err != nil {
			return nil, err
		}
		waveforms = []*Waveform{p}
	}

	if mode == SinglePSD || mode == DualPSD {
		p, err := PSD(waveforms[0])
		if err != nil {
			return nil, err
		}
		waveforms = []*Waveform{p}
	}
	return waveforms, nil
}

// finite reports whether v is a physical reading rather than a sentinel
func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
