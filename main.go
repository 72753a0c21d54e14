// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Scopereader - Fluke ScopeMeter remote control client
//
// A CLI tool for downloading screenshots, waveforms and measurements from
// Fluke ScopeMeter handheld oscilloscopes over their serial link.

package main

import (
	"os"

	"github.com/Thermoquad/scopereader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
