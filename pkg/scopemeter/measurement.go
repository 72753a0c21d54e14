// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Reading describes one measurement the instrument currently displays
type Reading struct {
	ID         int
	Valid      bool
	Source     int
	Unit       int
	Type       int
	Precision  int
	Resolution float64
}

// Name returns the display name of the reading number
func (r Reading) Name() string {
	if name, ok := ReadingNames[r.ID]; ok {
		return name
	}
	return "Reading " + strconv.Itoa(r.ID)
}

// SourceName returns the display name of the reading's input
func (r Reading) SourceName() string {
	if name, ok := Sources[r.Source]; ok {
		return name
	}
	return "Source " + strconv.Itoa(r.Source)
}

// TypeName returns the measurement type, or "" for unknown codes
func (r Reading) TypeName() string {
	if r.Type < 0 || r.Type >= len(MeasurementTypes) {
		return ""
	}
	return MeasurementTypes[r.Type]
}

// UnitName returns the unit symbol, or "" for unknown codes
func (r Reading) UnitName() string {
	unit, err := UnitByIndex(r.Unit)
	if err != nil {
		return ""
	}
	return unit
}

// ParseReadings decodes the reply to QM. Each entry is
// no,valid,source,unit,type,pres,mantissaEexponent; a comma after the
// exponent means another entry follows. Only valid readings are returned.
func ParseReadings(r io.ByteReader) ([]Reading, error) {
	var readings []Reading
	for {
		var rd Reading
		ints := []*int{&rd.ID, nil, &rd.Source, &rd.Unit, &rd.Type, &rd.Precision}
		for i, dst := range ints {
			v, err := expectInt(r, ',')
			if err != nil {
				return nil, fmt.Errorf("reading %d field %d: %w", len(readings), i, err)
			}
			if dst == nil {
				rd.Valid = v == 1
				continue
			}
			*dst = v
		}

		resolution, sep, err := readExponential(r)
		if err != nil {
			return nil, fmt.Errorf("reading %d resolution: %w", len(readings), err)
		}
		rd.Resolution = resolution

		if rd.Valid {
			readings = append(readings, rd)
		}
		if sep != ',' {
			return readings, nil
		}
	}
}

// readExponential reads mantissaEexponent and returns the separator that
// ended the exponent.
func readExponential(r io.ByteReader) (float64, byte, error) {
	m, err := ExpectDecimal(r, 'E')
	if err != nil {
		return 0, 0, err
	}
	mantissa, err := m.Float()
	if err != nil {
		return 0, 0, err
	}
	e, err := ReadDecimalField(r)
	if err != nil {
		return 0, 0, err
	}
	exponent, err := e.Int()
	if err != nil {
		return 0, 0, err
	}
	return mantissa * math.Pow10(exponent), e.Separator, nil
}

// Readings lists the valid readings the instrument currently shows
func (s *Session) Readings(ctx context.Context) ([]Reading, error) {
	var readings []Reading
	err := s.Do(ctx, func(l *Link) error {
		if _, err := l.SendCommand(CmdMeasurement); err != nil {
			return err
		}
		var err error
		readings, err = ParseReadings(l)
		return err
	})
	if err == nil {
		s.log.WithField("readings", len(readings)).Debug("measurement metadata decoded")
	}
	return readings, err
}

// ReadValue fetches the current value of reading id
func (s *Session) ReadValue(ctx context.Context, id int) (float64, error) {
	var value float64
	err := s.Do(ctx, func(l *Link) error {
		if _, err := l.SendCommand(CmdMeasurement + " " + strconv.Itoa(id)); err != nil {
			return err
		}
		v, sep, err := readExponential(l)
		if err != nil {
			return err
		}
		if sep != CR {
			return newError(KindSeparatorMismatch,
				map[string]interface{}{"expected": byte(CR), "observed": sep},
				"reading value ended by %q", sep)
		}
		value = v
		return nil
	})
	if err == nil {
		s.log.WithFields(logrus.Fields{"reading": id, "value": value}).Debug("reading fetched")
	}
	return value, err
}

// SelectReading returns the reading chosen by a menu letter, 'a' being the
// first.
func SelectReading(readings []Reading, letter byte) (Reading, error) {
	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	index := int(letter) - 'a'
	if index < 0 || index >= len(readings) {
		return Reading{}, newError(KindSelectionOutOfRange,
			map[string]interface{}{"selection": string(letter), "available": len(readings)},
			"selection %q is outside a-%c", letter, 'a'+len(readings)-1)
	}
	return readings[index], nil
}

// Result is a measured or combined value with its absolute precision
type Result struct {
	Value     float64
	Precision float64
	Unit      string
	Source    string
	Title     string
}

// ResultFromReading builds a result from a reading's metadata and value
func ResultFromReading(r Reading, value float64) Result {
	return Result{
		Value:     value,
		Precision: r.Resolution,
		Unit:      r.UnitName(),
		Source:    r.SourceName(),
	}
}

// String formats the result with FormatSI
func (r Result) String() string {
	return FormatSI(r.Value, r.Precision, r.Unit)
}

// Operator combines two results
type Operator int

// Operators in menu order
const (
	OpSingle Operator = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
)

var operatorNames = [...]string{
	"single",
	"first + second",
	"first - second",
	"first * second",
	"first / second",
}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("operator %d", int(o))
}

// Operators lists every operator in menu order
func Operators() []Operator {
	ops := make([]Operator, len(operatorNames))
	for i := range ops {
		ops[i] = Operator(i)
	}
	return ops
}

// Operands returns how many results the operator consumes
func (o Operator) Operands() int {
	if o == OpSingle {
		return 1
	}
	return 2
}

// Combine applies op to a and b. Sums and differences add absolute
// precisions; products and quotients add relative ones. A quotient of
// equal units is expressed in percent.
func Combine(a, b Result, op Operator) (Result, error) {
	out := Result{Source: a.Source}
	if b.Source != "" && b.Source != a.Source {
		out.Source = a.Source + ", " + b.Source
	}

	switch op {
	case OpSingle:
		return a, nil

	case OpAdd, OpSub:
		if a.Unit != b.Unit {
			return Result{}, newError(KindUnitMismatch,
				map[string]interface{}{"first": a.Unit, "second": b.Unit},
				"units for first and second measurements differ: %q and %q", a.Unit, b.Unit)
		}
		out.Unit = a.Unit
		out.Value = a.Value + b.Value
		if op == OpSub {
			out.Value = a.Value - b.Value
		}
		out.Precision = a.Precision + b.Precision
		return out, nil

	case OpMul, OpDiv:
		if a.Value == 0 || b.Value == 0 {
			return Result{}, newError(KindInvalidOperand,
				map[string]interface{}{"first": a.Value, "second": b.Value},
				"%s needs nonzero operands", op)
		}
		if op == OpMul {
			out.Value = a.Value * b.Value
			if a.Unit == b.Unit {
				out.Unit = a.Unit + unitSquared
			} else {
				out.Unit = a.Unit + unitProduct + b.Unit
			}
		} else {
			out.Value = a.Value / b.Value
			if a.Unit == b.Unit {
				out.Unit = UnitPercent
			} else {
				out.Unit = a.Unit + unitQuotient + b.Unit
			}
		}
		out.Precision = math.Abs(out.Value) *
			(a.Precision/math.Abs(a.Value) + b.Precision/math.Abs(b.Value))
		if out.Unit == UnitPercent && op == OpDiv {
			out.Value *= 100
			out.Precision *= 100
		}
		return out, nil
	}

	return Result{}, newError(KindSelectionOutOfRange,
		map[string]interface{}{"operator": int(op)}, "unknown operator %d", int(op))
}

// Accumulator collects the operands of one measurement
type Accumulator struct {
	op       Operator
	operands []Result
}

// NewAccumulator starts a measurement combined with op
func NewAccumulator(op Operator) *Accumulator {
	return &Accumulator{op: op}
}

// Operator returns the operator the accumulator applies
func (a *Accumulator) Operator() Operator {
	return a.op
}

// Need returns how many more operands are expected
func (a *Accumulator) Need() int {
	return a.op.Operands() - len(a.operands)
}

// Push adds the next operand
func (a *Accumulator) Push(r Result) error {
	if a.Need() <= 0 {
		return newError(KindProtocolViolation,
			map[string]interface{}{"operands": len(a.operands)},
			"%s takes %d operands", a.op, a.op.Operands())
	}
	a.operands = append(a.operands, r)
	return nil
}

// Result combines the collected operands
func (a *Accumulator) Result() (Result, error) {
	if n := a.Need(); n > 0 {
		return Result{}, newError(KindProtocolViolation,
			map[string]interface{}{"missing": n},
			"%s is missing %d operands", a.op, n)
	}
	if a.op == OpSingle {
		return a.operands[0], nil
	}
	return Combine(a.operands[0], a.operands[1], a.op)
}
