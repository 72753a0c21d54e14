// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"fmt"
	"math"
)

var (
	positivePrefixes = [...]string{"", "k", "M", "G", "T", "P", "E", "Z", "Y"}
	negativePrefixes = [...]string{"", "m", "μ", "n", "p", "f", "a", "z", "y"}
)

const maxDegree = len(positivePrefixes) - 1

func siPrefix(degree int) string {
	if degree < 0 {
		return negativePrefixes[-degree]
	}
	return positivePrefixes[degree]
}

func floorLog10(v float64) int {
	return int(math.Floor(math.Log10(math.Abs(v))))
}

// siDegree returns the power of 1000 used to scale v
func siDegree(v float64) int {
	d := int(math.Floor(math.Log10(math.Abs(v)) / 3))
	if d > maxDegree {
		return maxDegree
	}
	if d < -maxDegree {
		return -maxDegree
	}
	return d
}

// roundUpPrecision rounds p up to one significant digit
func roundUpPrecision(p float64) float64 {
	mag := math.Pow10(floorLog10(p))
	// Trim binary noise so 0.0005/1e-4 does not ceil to 6.
	ratio := math.Round(p/mag*1e9) / 1e9
	return math.Ceil(ratio) * mag
}

// FormatSI renders value with an SI prefix. A nonzero precision is rounded
// up to one significant digit and shown as "(value ± precision) unit" with
// as many decimals as that digit warrants; a zero precision shows the
// value alone, rounded to an integer in the chosen prefix.
//
//	FormatSI(1500, 0, "V")          // "2 kV"
//	FormatSI(0.0033, 0.0005, "A")   // "(3.3 ± 0.5) mA"
func FormatSI(value, precision float64, unit string) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return fmt.Sprintf("%v %s", value, unit)
	}
	precision = math.Abs(precision)
	if math.IsInf(precision, 0) || math.IsNaN(precision) {
		precision = 0
	}
	if precision != 0 {
		precision = roundUpPrecision(precision)
	}

	degree, digits := 0, 0
	switch {
	case value != 0:
		degree = siDegree(value)
		if precision != 0 {
			digits = floorLog10(value) - floorLog10(precision) + 1
			digits -= floorLog10(value/math.Pow(1000, float64(degree))) + 1
			if digits < 0 {
				digits = 0
			}
		}
	case precision != 0:
		degree = siDegree(precision)
	}

	scale := math.Pow(1000, float64(degree))
	value /= scale
	precision /= scale
	prefix := siPrefix(degree)

	if precision == 0 {
		return fmt.Sprintf("%.0f %s%s", value, prefix, unit)
	}
	return fmt.Sprintf("(%.*f ± %.*f) %s%s", digits, value, digits, precision, prefix, unit)
}
