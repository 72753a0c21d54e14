// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

// Units indexed by the unit codes used in waveform and measurement
// metadata. Index 0 means no unit.
var Units = [...]string{
	"",
	"V",
	"A",
	"Ω",
	"W",
	"F",
	"K",
	"s",
	"h",
	"days",
	"Hz",
	"°",
	"°C",
	"°F",
	"%",
	"dBm 50 Ω",
	"dBm 600 Ω",
	"dBV",
	"dBA",
	"dBW",
	"VAR",
	"VA",
}

// Unit symbols referenced by waveform derivations
const (
	UnitVolt     = "V"
	UnitAmpere   = "A"
	UnitWatt     = "W"
	UnitHertz    = "Hz"
	UnitPercent  = "%"
	UnitWattHz   = "W/Hz"
	UnitVolt2Hz  = "V²/Hz"
	unitSquared  = "²"
	unitProduct  = "·"
	unitQuotient = "/"
)

// UnitByIndex looks up a unit code
func UnitByIndex(index int) (string, error) {
	if index < 0 || index >= len(Units) {
		return "", newError(KindUnitIndexOutOfRange,
			map[string]interface{}{"index": index, "max": len(Units) - 1},
			"unit index %d (valid 0-%d)", index, len(Units)-1)
	}
	return Units[index], nil
}

// MeasurementTypes indexed by the measurement type code. Empty entries are
// codes the instrument does not use.
var MeasurementTypes = [...]string{
	"",
	"Mean",
	"RMS",
	"True RMS",
	"Peak to Peak",
	"Peak Maximum",
	"Peak Minimum",
	"Crest Factor",
	"Period",
	"Duty Cycle Negative",
	"Duty Cycle Positive",
	"Frequency",
	"Pulse Width Negative",
	"Pulse Width Positive",
	"Phase",
	"Diode",
	"Continuity",
	"",
	"Reactive Power",
	"Apparent Power",
	"Real Power",
	"Harmonic Reactive Power",
	"Harmonic Apparent Power",
	"Harmonic Real Power",
	"Harmonic RMS",
	"Displacement Power Factor",
	"Total Power Factor",
	"Total Harmonic Distortion",
	"Total Harmonic Distortion with respect to Fundamental",
	"K Factor (European)",
	"K Factor (US)",
	"Line Frequency",
	"Vac PWM or Vac+dc PWM",
	"Rise Time",
	"Fall Time",
}

// ReadingNames maps reading numbers to their display names
var ReadingNames = map[int]string{
	11: "Reading 1",
	21: "Reading 2",
	31: "Cursor 1 Amplitude",
	41: "Cursor 2 Amplitude",
	53: "Cursor Maximum Amplitude",
	54: "Cursor Average Amplitude",
	55: "Cursor Minimum Amplitude",
	61: "Cursor Relative Amplitude",
	71: "Cursor Relative Time",
}

// Sources maps measurement source codes to input names
var Sources = map[int]string{
	1:  "Input A",
	2:  "Input B",
	3:  "Input C",
	4:  "Input D",
	5:  "External Input",
	12: "Input A vs Input B",
	21: "Input B vs Input A",
}
