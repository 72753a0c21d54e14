// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// DecodeUnsigned decodes a big-endian unsigned integer of len(data) bytes
func DecodeUnsigned(data []byte) uint64 {
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return v
}

// DecodeSigned decodes a big-endian two's complement integer of len(data) bytes
func DecodeSigned(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	v := DecodeUnsigned(data)
	bits := uint(len(data) * 8)
	if bits < 64 && v&(1<<(bits-1)) != 0 {
		v |= ^uint64(0) << bits
	}
	return int64(v)
}

// DecodeFixedFloat decodes the 3 byte float format: a signed 16-bit
// mantissa followed by a signed 8-bit decimal exponent.
func DecodeFixedFloat(data []byte) float64 {
	mantissa := DecodeSigned(data[0:2])
	exponent := DecodeSigned(data[2:3])
	return float64(mantissa) * math.Pow10(int(exponent))
}

// DecimalField is an ASCII decimal field and the separator that ended it
type DecimalField struct {
	Raw       string
	Separator byte
}

// Present reports whether the field held any digits
func (f DecimalField) Present() bool {
	return f.Raw != ""
}

// Int parses the field as an integer
func (f DecimalField) Int() (int, error) {
	if !f.Present() {
		return 0, fmt.Errorf("empty decimal field before %q", f.Separator)
	}
	v, err := strconv.Atoi(f.Raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer field %q: %w", f.Raw, err)
	}
	return v, nil
}

// Float parses the field as a floating point number
func (f DecimalField) Float() (float64, error) {
	if !f.Present() {
		return 0, fmt.Errorf("empty decimal field before %q", f.Separator)
	}
	v, err := strconv.ParseFloat(f.Raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal field %q: %w", f.Raw, err)
	}
	return v, nil
}

func isDecimalByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '+' || b == '-'
}

// ReadDecimalField consumes a run of digits, '.', '+' and '-' from r. The
// first byte outside that set is consumed as the separator. An exhausted
// reader is reported as ErrTimeout, since the link only runs dry when the
// read deadline passes.
func ReadDecimalField(r io.ByteReader) (DecimalField, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return DecimalField{}, newError(KindTimeout, nil, "decimal field after %q", sb.String())
			}
			return DecimalField{}, err
		}
		if !isDecimalByte(b) {
			return DecimalField{Raw: sb.String(), Separator: b}, nil
		}
		sb.WriteByte(b)
	}
}

// ExpectDecimal reads a decimal field that must end with sep
func ExpectDecimal(r io.ByteReader, sep byte) (DecimalField, error) {
	f, err := ReadDecimalField(r)
	if err != nil {
		return f, err
	}
	if f.Separator != sep {
		return f, newError(KindSeparatorMismatch,
			map[string]interface{}{"expected": sep, "observed": f.Separator},
			"expected %q after decimal %q, got %q", sep, f.Raw, f.Separator)
	}
	return f, nil
}

// expectInt reads an integer field terminated by sep
func expectInt(r io.ByteReader, sep byte) (int, error) {
	f, err := ExpectDecimal(r, sep)
	if err != nil {
		return 0, err
	}
	return f.Int()
}
