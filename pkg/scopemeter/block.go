// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import "github.com/sirupsen/logrus"

// Header is the block header: "#0", a class byte and a big-endian length
type Header struct {
	Class byte
	Size  int
}

// Final reports whether the class byte marks the last screenshot segment
func (h Header) Final() bool {
	return h.Class&finalSegmentFlag != 0
}

// DecodeHeader decodes a header whose length field is width bytes wide
func DecodeHeader(data []byte, width int) (Header, error) {
	if len(data) != 3+width {
		return Header{}, timeoutError("block header", 3+width, len(data))
	}
	if data[0] != preamble0 || data[1] != preamble1 {
		return Header{}, newError(KindPreambleMismatch,
			map[string]interface{}{"expected": "#0", "observed": string(data[0:2])},
			"expected \"#0\", got %q", data[0:2])
	}
	return Header{
		Class: data[2],
		Size:  int(DecodeUnsigned(data[3 : 3+width])),
	}, nil
}

// ReadHeader reads a block header with a width byte length field
func (l *Link) ReadHeader(width int) (Header, error) {
	raw, err := l.readFull("block header", 3+width)
	if err != nil {
		return Header{}, err
	}
	h, err := DecodeHeader(raw, width)
	if err != nil {
		return Header{}, err
	}
	l.log.WithFields(logrus.Fields{"class": h.Class, "size": h.Size}).Debug("block header")
	return h, nil
}

// ReadBlock reads size payload bytes plus the checksum byte and returns the
// verified payload
func (l *Link) ReadBlock(size int) ([]byte, error) {
	data, err := l.readFull("block data", size+1)
	if err != nil {
		return nil, err
	}
	payload, check := data[:size], data[size]
	if sum := Checksum(payload); sum != check {
		l.stats.update(func(s *Statistics) { s.ChecksumFailures++ })
		return nil, newError(KindChecksum,
			map[string]interface{}{"expected": check, "calculated": sum, "size": size},
			"block of %d bytes: expected 0x%02X, calculated 0x%02X", size, check, sum)
	}
	l.stats.update(func(s *Statistics) { s.Blocks++ })
	return payload, nil
}
