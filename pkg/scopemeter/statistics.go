// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Statistics tracks link traffic and error counts for a session
type Statistics struct {
	mu        sync.Mutex
	StartTime time.Time

	// Counters
	Commands         uint64
	AckFailures      map[AckOutcome]uint64
	Blocks           uint64
	Segments         uint64
	BytesRead        uint64
	BytesWritten     uint64
	ChecksumFailures uint64
	SegmentRetries   uint64
	Timeouts         uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime:   time.Now(),
		AckFailures: make(map[AckOutcome]uint64),
	}
}

func (s *Statistics) update(fn func(s *Statistics)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Reset clears all counters
func (s *Statistics) Reset() {
	s.update(func(s *Statistics) {
		s.StartTime = time.Now()
		s.Commands = 0
		s.AckFailures = make(map[AckOutcome]uint64)
		s.Blocks = 0
		s.Segments = 0
		s.BytesRead = 0
		s.BytesWritten = 0
		s.ChecksumFailures = 0
		s.SegmentRetries = 0
		s.Timeouts = 0
	})
}

// TotalAckFailures returns the number of commands answered with an error code
func (s *Statistics) TotalAckFailures() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total uint64
	for _, n := range s.AckFailures {
		total += n
	}
	return total
}

// Summary returns a one line summary of the counters
func (s *Statistics) Summary() string {
	failures := s.TotalAckFailures()

	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.StartTime)
	return fmt.Sprintf("%d commands (%d rejected), %d blocks, %d segments, %s in, %s out, %d checksum failures, %d retries, %d timeouts in %s",
		s.Commands, failures, s.Blocks, s.Segments,
		humanize.Bytes(s.BytesRead), humanize.Bytes(s.BytesWritten),
		s.ChecksumFailures, s.SegmentRetries, s.Timeouts,
		elapsed.Round(time.Millisecond))
}
