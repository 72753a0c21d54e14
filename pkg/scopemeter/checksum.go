// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

// Checksum computes the additive 8-bit checksum for the given data
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// VerifyChecksum reports whether check is the checksum of data
func VerifyChecksum(data []byte, check byte) bool {
	return Checksum(data) == check
}
