// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ArchiveVersion is written into every archive
const ArchiveVersion = 1

// archive is the CBOR layout: {1: version, 2: [waveform, ...]}
type archive struct {
	Version   uint              `cbor:"1,keyasint"`
	Waveforms []archiveWaveform `cbor:"2,keyasint"`
}

type archiveWaveform struct {
	Channel    string      `cbor:"1,keyasint"`
	Kind       string      `cbor:"2,keyasint"`
	YUnit      string      `cbor:"3,keyasint"`
	XUnit      string      `cbor:"4,keyasint"`
	YDivisions int         `cbor:"5,keyasint"`
	XDivisions int         `cbor:"6,keyasint"`
	YScale     float64     `cbor:"7,keyasint"`
	XScale     float64     `cbor:"8,keyasint"`
	XZero      float64     `cbor:"9,keyasint"`
	YAtOrigin  float64     `cbor:"10,keyasint"`
	XAtOrigin  float64     `cbor:"11,keyasint"`
	DeltaX     float64     `cbor:"12,keyasint"`
	Timestamp  int64       `cbor:"13,keyasint"`
	Averaged   bool        `cbor:"14,keyasint"`
	Samples    [][]float64 `cbor:"15,keyasint"`
	Title      string      `cbor:"16,keyasint,omitempty"`
}

// EncodeArchive stores captured waveforms as CBOR. Sentinel samples are
// kept as IEEE infinities and NaN.
func EncodeArchive(waveforms []*Waveform) ([]byte, error) {
	a := archive{Version: ArchiveVersion, Waveforms: make([]archiveWaveform, len(waveforms))}
	for i, w := range waveforms {
		a.Waveforms[i] = archiveWaveform{
			Channel:    w.Channel,
			Kind:       string(w.Kind),
			YUnit:      w.YUnit,
			XUnit:      w.XUnit,
			YDivisions: w.YDivisions,
			XDivisions: w.XDivisions,
			YScale:     w.YScale,
			XScale:     w.XScale,
			XZero:      w.XZero,
			YAtOrigin:  w.YAtOrigin,
			XAtOrigin:  w.XAtOrigin,
			DeltaX:     w.DeltaX,
			Timestamp:  w.Timestamp.Unix(),
			Averaged:   w.Averaged,
			Samples:    w.Samples,
			Title:      w.Title,
		}
	}

	data, err := cbor.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive: %w", err)
	}
	return data, nil
}

// DecodeArchive restores waveforms written by EncodeArchive
func DecodeArchive(data []byte) ([]*Waveform, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty archive")
	}

	var a archive
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	if a.Version != ArchiveVersion {
		return nil, fmt.Errorf("unsupported archive version %d", a.Version)
	}

	waveforms := make([]*Waveform, len(a.Waveforms))
	for i, aw := range a.Waveforms {
		waveforms[i] = &Waveform{
			Channel:    aw.Channel,
			Kind:       TraceKind(aw.Kind),
			YUnit:      aw.YUnit,
			XUnit:      aw.XUnit,
			YDivisions: aw.YDivisions,
			XDivisions: aw.XDivisions,
			YScale:     aw.YScale,
			XScale:     aw.XScale,
			XZero:      aw.XZero,
			YAtOrigin:  aw.YAtOrigin,
			XAtOrigin:  aw.XAtOrigin,
			DeltaX:     aw.DeltaX,
			Timestamp:  time.Unix(aw.Timestamp, 0),
			Averaged:   aw.Averaged,
			Samples:    SampleMatrix(aw.Samples),
			Title:      aw.Title,
		}
	}
	return waveforms, nil
}
