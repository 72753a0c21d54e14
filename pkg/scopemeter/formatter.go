// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// FileName returns the data file name for w:
// <timestamp>_input-<channel>_<kind>_<xunit>-vs-<yunit>.dat
func FileName(w *Waveform) string {
	kind := strings.ReplaceAll(strings.ToLower(string(w.Kind)), " ", "-")
	yUnit := strings.ReplaceAll(w.YUnit, "/", "per")
	return fmt.Sprintf("%s_input-%s_%s_%s-vs-%s.dat",
		w.Timestamp.Format("2006-01-02-15-04-05"), w.Channel, kind, w.XUnit, yUnit)
}

// formatSample renders v like "%.5e", spelling sentinels inf, -inf and nan
func formatSample(v float64) string {
	if finite(v) {
		return fmt.Sprintf("%.5e", v)
	}
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return "nan"
	}
}

// WriteData writes one line per sample group: the x coordinate followed by
// every slot, space separated.
func WriteData(out io.Writer, w *Waveform) error {
	bw := bufio.NewWriter(out)
	for i, row := range w.Samples {
		bw.WriteString(formatSample(w.X(i)))
		for _, v := range row {
			bw.WriteByte(' ')
			bw.WriteString(formatSample(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FormatWaveformDetails returns the label/value pairs describing w
func FormatWaveformDetails(w *Waveform) [][2]string {
	details := [][2]string{
		{"Channel", w.Channel},
		{"Trace Type", string(w.Kind)},
		{"Units", w.XUnit + " vs " + w.YUnit},
		{"Timestamp", w.Timestamp.Format("15:04:05 on January 02, 2006")},
		{"Size", fmt.Sprintf("%d", w.Samples.Rows())},
	}
	if w.XUnit == "s" && w.DeltaX > 0 && w.Samples.Rows() > 0 {
		details = append(details, [2]string{"Span", FormatSeconds(w.DeltaX * float64(w.Samples.Rows()))})
	}
	if w.DeltaX > 0 {
		details = append(details, [2]string{"Spacing", FormatSI(w.DeltaX, 0, w.XUnit)})
	}
	return details
}

// FormatReading returns the menu description of a reading
func FormatReading(r Reading) [][2]string {
	return [][2]string{
		{"Source", r.SourceName()},
		{"Type", r.TypeName()},
		{"Unit", r.UnitName()},
		{"Precision", FormatSI(r.Resolution, 0, r.UnitName())},
	}
}

// FormatIdentity returns the label/value pairs describing an identity
func FormatIdentity(id Identity) [][2]string {
	return [][2]string{
		{"Model", id.Model},
		{"Firmware", id.Firmware},
		{"Date", id.BuildDate.Format("January 02, 2006")},
		{"Languages", id.Languages},
	}
}

// FormatSeconds renders a duration in seconds as days, hours, minutes and
// seconds, appending the raw total once it exceeds a minute.
func FormatSeconds(seconds float64) string {
	const (
		secondsPerMinute = 60
		secondsPerHour   = 60 * secondsPerMinute
		secondsPerDay    = 24 * secondsPerHour
	)

	total := seconds
	days := math.Floor(seconds / secondsPerDay)
	seconds -= days * secondsPerDay
	hours := math.Floor(seconds / secondsPerHour)
	seconds -= hours * secondsPerHour
	minutes := math.Floor(seconds / secondsPerMinute)
	seconds -= minutes * secondsPerMinute

	var sb strings.Builder
	if days > 0 {
		fmt.Fprintf(&sb, "%d days, ", int(days))
	}
	if hours > 0 {
		fmt.Fprintf(&sb, "%d hours, ", int(hours))
	}
	if minutes > 0 {
		fmt.Fprintf(&sb, "%d minutes, ", int(minutes))
	}
	fmt.Fprintf(&sb, "%.3f seconds", seconds)
	if total >= secondsPerMinute {
		fmt.Fprintf(&sb, " (%.3f seconds)", total)
	}
	return sb.String()
}
