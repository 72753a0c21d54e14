// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// hamming returns a periodic Hamming window of length n, the form used for
// spectral estimation.
func hamming(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// Welch estimates the one-sided power spectral density of x sampled at fs
// using Welch's averaged periodogram: Hamming windowed segments of nperseg
// samples with 50% overlap, each with its mean removed. A record shorter
// than nperseg is treated as a single segment.
func Welch(x []float64, fs float64, nperseg int) (freqs, psd []float64, err error) {
	n := nperseg
	if len(x) < n {
		n = len(x)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("welch: need at least 2 samples, got %d", len(x))
	}
	if fs <= 0 || math.IsInf(fs, 0) || math.IsNaN(fs) {
		return nil, nil, fmt.Errorf("welch: invalid sampling frequency %g", fs)
	}

	overlap := n / 2
	step := n - overlap
	segments := (len(x) - overlap) / step

	window := hamming(n)
	var power float64
	for _, v := range window {
		power += v * v
	}
	scale := 1 / (fs * power)

	bins := n/2 + 1
	psd = make([]float64, bins)
	fft := fourier.NewFFT(n)
	seg := make([]float64, n)
	var coeffs []complex128

	for k := 0; k < segments; k++ {
		start := k * step
		var mean float64
		for _, v := range x[start : start+n] {
			mean += v
		}
		mean /= float64(n)
		for i := range seg {
			seg[i] = (x[start+i] - mean) * window[i]
		}

		coeffs = fft.Coefficients(coeffs, seg)
		for i, c := range coeffs {
			psd[i] += real(c)*real(c) + imag(c)*imag(c)
		}
	}

	freqs = make([]float64, bins)
	for i := range psd {
		psd[i] *= scale / float64(segments)
		// Fold the negative frequencies in, except for DC and Nyquist.
		if i > 0 && !(n%2 == 0 && i == bins-1) {
			psd[i] *= 2
		}
		freqs[i] = float64(i) * fs / float64(n)
	}
	return freqs, psd, nil
}
