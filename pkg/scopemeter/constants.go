// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package scopemeter implements the remote control protocol of Fluke
// ScopeMeter handheld oscilloscopes.
//
// Commands are ASCII lines terminated by a carriage return and are answered
// with a two byte acknowledgement. Bulk replies arrive either as ASCII
// decimal fields or as binary blocks framed by a "#0" preamble, a class
// byte, a big-endian length and an additive checksum. This package provides
// the field decoders, the handshake and framing layers, the segmented
// screenshot transfer, waveform and measurement decoding, and the SI
// formatter used to present readings.
package scopemeter

import "time"

// Protocol framing bytes
const (
	CR = '\r'

	preamble0 = '#'
	preamble1 = '0'
)

// Link parameters
const (
	InitialBaudRate    = 1200
	FastBaudRate       = 19200
	DefaultReadTimeout = time.Second
)

// Block layout
const (
	AdminRecordSize    = 47
	AdminLengthWidth   = 2
	SampleLengthWidth  = 4
	SegmentLengthWidth = 2

	finalSegmentFlag = 0x80
)

// MaxSegmentRetries is the number of consecutive checksum failures
// tolerated on a single screenshot segment.
const MaxSegmentRetries = 3

// Segment status codes sent before each screenshot round
const (
	segmentNext       = 0
	segmentRetransmit = 1
)

// Commands
const (
	CmdIdentify    = "ID"
	CmdBaudRate    = "PC 19200"
	CmdWriteTime   = "WT"
	CmdWriteDate   = "WD"
	CmdScreenshot  = "QP 0,12,B"
	CmdWaveform    = "QW"
	CmdMeasurement = "QM"
)

// Sample control byte masks
const (
	controlSigned    = 0b10000000
	controlGroupMask = 0b01110000
	controlWidthMask = 0b00000111

	groupOne   = 0b00000000
	groupTwo   = 0b01000000
	groupThree = 0b01100000
	groupAuto  = 0b01110000
)

// Waveform source suffixes for the QW command
const (
	sourceTrace    = '0'
	sourceTrend    = '1'
	sourceEnvelope = '2'
)

// WelchSegmentLength is the periodogram segment length used for PSD.
const WelchSegmentLength = 1024
