// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TraceKind is the semantic category of a waveform
type TraceKind string

// Trace kinds
const (
	KindTrace    TraceKind = "trace"
	KindAverage  TraceKind = "average"
	KindGlitch   TraceKind = "glitch"
	KindEnvelope TraceKind = "envelope"
	KindTrend    TraceKind = "trend"
	KindPSD      TraceKind = "psd"
	KindPower    TraceKind = "power"
)

// PowerKind returns the kind of a power waveform derived from kind
func PowerKind(kind TraceKind) TraceKind {
	if kind == KindTrace || kind == "" {
		return KindPower
	}
	return kind + " " + KindPower
}

// IsTrend reports whether kind is a trend record or a trend composite
func (k TraceKind) IsTrend() bool {
	return strings.Contains(string(k), string(KindTrend))
}

// SampleMatrix holds sample groups; each group has one slot per value the
// instrument records at that x position. Slots hold +Inf for overload,
// -Inf for underload and NaN for invalid samples.
type SampleMatrix [][]float64

// Rows returns the number of sample groups
func (m SampleMatrix) Rows() int {
	return len(m)
}

// Slots returns the number of values per group
func (m SampleMatrix) Slots() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Column returns slot j of every group
func (m SampleMatrix) Column(j int) []float64 {
	col := make([]float64, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}

// Waveform is a decoded trace with its administrative data
type Waveform struct {
	Channel    string
	Kind       TraceKind
	YUnit      string
	XUnit      string
	YDivisions int
	XDivisions int
	YScale     float64
	XScale     float64
	XZero      float64
	YAtOrigin  float64
	XAtOrigin  float64
	DeltaX     float64
	Timestamp  time.Time
	Averaged   bool
	Samples    SampleMatrix
	Title      string
}

// X returns the x coordinate of sample group i
func (w *Waveform) X(i int) float64 {
	return w.XZero + float64(i)*w.DeltaX
}

// clone returns a copy of w sharing no sample storage
func (w *Waveform) clone() *Waveform {
	c := *w
	c.Samples = make(SampleMatrix, len(w.Samples))
	for i, row := range w.Samples {
		c.Samples[i] = append([]float64(nil), row...)
	}
	return &c
}

// SampleScale converts raw samples to physical values
type SampleScale struct {
	Zero       float64
	Resolution float64
}

// Value returns the physical value of a raw sample
func (s SampleScale) Value(raw int64) float64 {
	return s.Zero + float64(raw)*s.Resolution
}

// DecodeAdminRecord decodes the 47 byte waveform administrative record
func DecodeAdminRecord(data []byte) (*Waveform, SampleScale, error) {
	if len(data) != AdminRecordSize {
		return nil, SampleScale{}, newError(KindSizeMismatch,
			map[string]interface{}{"expected": AdminRecordSize, "observed": len(data)},
			"administrative record is %d bytes, expected %d", len(data), AdminRecordSize)
	}

	yUnit, err := UnitByIndex(int(data[1]))
	if err != nil {
		return nil, SampleScale{}, fmt.Errorf("y unit: %w", err)
	}
	xUnit, err := UnitByIndex(int(data[2]))
	if err != nil {
		return nil, SampleScale{}, fmt.Errorf("x unit: %w", err)
	}

	timestamp, err := decodeTimestamp(data[33:47])
	if err != nil {
		return nil, SampleScale{}, err
	}

	w := &Waveform{
		YUnit:      yUnit,
		XUnit:      xUnit,
		YDivisions: int(DecodeUnsigned(data[3:5])),
		XDivisions: int(DecodeUnsigned(data[5:7])),
		YScale:     DecodeFixedFloat(data[7:10]),
		XScale:     DecodeFixedFloat(data[10:13]),
		XZero:      DecodeFixedFloat(data[18:21]),
		DeltaX:     DecodeFixedFloat(data[24:27]),
		YAtOrigin:  DecodeFixedFloat(data[27:30]),
		XAtOrigin:  DecodeFixedFloat(data[30:33]),
		Timestamp:  timestamp,
	}
	scale := SampleScale{
		Zero:       DecodeFixedFloat(data[15:18]),
		Resolution: DecodeFixedFloat(data[21:24]),
	}
	return w, scale, nil
}

// decodeTimestamp decodes YYYYMMDDhhmmss in ASCII
func decodeTimestamp(data []byte) (time.Time, error) {
	widths := []int{4, 2, 2, 2, 2, 2}
	values := make([]int, len(widths))
	offset := 0
	for i, w := range widths {
		field := string(data[offset : offset+w])
		v, err := strconv.Atoi(field)
		if err != nil || v < 0 {
			return time.Time{}, newError(KindMalformedTimestamp,
				map[string]interface{}{"field": field, "offset": offset},
				"invalid timestamp field %q at offset %d", field, offset)
		}
		values[i] = v
		offset += w
	}
	return time.Date(values[0], time.Month(values[1]), values[2],
		values[3], values[4], values[5], 0, time.Local), nil
}

// SampleFormat describes the packing of a sample block
type SampleFormat struct {
	Signed   bool
	Width    int
	PerGroup int
}

// ParseSampleFormat decodes the sample block control byte. The 0b111 group
// code means three samples per group for trend records and two otherwise,
// so the caller supplies the kind being decoded.
func ParseSampleFormat(control byte, kind TraceKind) (SampleFormat, error) {
	f := SampleFormat{
		Signed:   control&controlSigned != 0,
		Width:    int(control & controlWidthMask),
		PerGroup: 1,
	}
	if f.Width == 0 {
		return f, newError(KindSizeMismatch,
			map[string]interface{}{"control": control},
			"control byte 0x%02X has zero sample width", control)
	}

	switch control & controlGroupMask {
	case groupTwo:
		f.PerGroup = 2
	case groupThree:
		f.PerGroup = 3
	case groupAuto:
		if kind.IsTrend() {
			f.PerGroup = 3
		} else {
			f.PerGroup = 2
		}
	}
	return f, nil
}

// decode reads one raw sample at data[0:Width]
func (f SampleFormat) decode(data []byte) int64 {
	if f.Signed {
		return DecodeSigned(data)
	}
	return int64(DecodeUnsigned(data))
}

// DecodeSamples decodes a sample block payload: control byte, overload,
// underload and invalid sentinels, a 16-bit group count and the samples.
func DecodeSamples(data []byte, scale SampleScale, kind TraceKind) (SampleMatrix, error) {
	if len(data) == 0 {
		return nil, newError(KindSizeMismatch, map[string]interface{}{"observed": 0}, "empty sample block")
	}
	f, err := ParseSampleFormat(data[0], kind)
	if err != nil {
		return nil, err
	}

	headerSize := 1 + 3*f.Width + 2
	if len(data) < headerSize {
		return nil, newError(KindSizeMismatch,
			map[string]interface{}{"expected": headerSize, "observed": len(data)},
			"sample block of %d bytes is shorter than its %d byte header", len(data), headerSize)
	}

	cursor := 1
	next := func() int64 {
		v := f.decode(data[cursor : cursor+f.Width])
		cursor += f.Width
		return v
	}
	overload := next()
	underload := next()
	invalid := next()
	count := int(DecodeUnsigned(data[cursor : cursor+2]))
	cursor += 2

	expected := cursor + count*f.PerGroup*f.Width
	if expected != len(data) {
		return nil, newError(KindSizeMismatch,
			map[string]interface{}{"expected": expected, "observed": len(data), "count": count},
			"%d groups of %d×%d bytes need %d bytes, block has %d",
			count, f.PerGroup, f.Width, expected, len(data))
	}

	samples := make(SampleMatrix, count)
	for i := range samples {
		row := make([]float64, f.PerGroup)
		for j := range row {
			switch raw := next(); raw {
			case overload:
				row[j] = math.Inf(1)
			case underload:
				row[j] = math.Inf(-1)
			case invalid:
				row[j] = math.NaN()
			default:
				row[j] = scale.Value(raw)
			}
		}
		samples[i] = row
	}

	if cursor != len(data) {
		return nil, newError(KindSizeMismatch,
			map[string]interface{}{"expected": len(data), "observed": cursor},
			"decoded %d bytes of %d", cursor, len(data))
	}
	return samples, nil
}

// WaveformSource builds the QW source argument for input channel (1 based)
// and record kind.
func WaveformSource(channel int, kind TraceKind) string {
	suffix := byte(sourceTrace)
	switch {
	case kind.IsTrend():
		suffix = sourceTrend
	case kind == KindEnvelope:
		suffix = sourceEnvelope
	}
	return strconv.Itoa(channel) + string(suffix)
}

// Waveform queries one waveform. kind selects how ambiguous sample packing
// is interpreted; the returned waveform carries it until a derivation
// replaces it.
func (s *Session) Waveform(ctx context.Context, source string, kind TraceKind) (*Waveform, error) {
	var w *Waveform
	err := s.Do(ctx, func(l *Link) error {
		if _, err := l.SendCommand(CmdWaveform + " " + source); err != nil {
			return err
		}

		h, err := l.ReadHeader(AdminLengthWidth)
		if err != nil {
			return fmt.Errorf("administrative header: %w", err)
		}
		if h.Size != AdminRecordSize {
			return newError(KindSizeMismatch,
				map[string]interface{}{"expected": AdminRecordSize, "observed": h.Size},
				"administrative record announced as %d bytes", h.Size)
		}
		admin, err := l.ReadBlock(h.Size)
		if err != nil {
			return fmt.Errorf("administrative record: %w", err)
		}
		var scale SampleScale
		w, scale, err = DecodeAdminRecord(admin)
		if err != nil {
			return err
		}

		if err := l.ExpectByte("separator before samples", ','); err != nil {
			return err
		}
		h, err = l.ReadHeader(SampleLengthWidth)
		if err != nil {
			return fmt.Errorf("sample header: %w", err)
		}
		block, err := l.ReadBlock(h.Size)
		if err != nil {
			return fmt.Errorf("sample block: %w", err)
		}
		if err := l.ExpectByte("sample terminator", CR); err != nil {
			return err
		}

		w.Samples, err = DecodeSamples(block, scale, kind)
		if err != nil {
			return err
		}
		w.Kind = kind

		s.log.WithFields(logrus.Fields{
			"source": source,
			"groups": w.Samples.Rows(),
			"slots":  w.Samples.Slots(),
		}).Debug("waveform decoded")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}
