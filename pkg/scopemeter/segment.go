// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Segmented transfer states
const (
	stateRequesting = iota
	stateReceiving
	stateRetrying
	stateAdvancing
	stateComplete
)

// segmentTransfer drives the multi-round screenshot download
type segmentTransfer struct {
	link      *Link
	state     int
	status    int
	retries   int
	remaining int
	header    Header
	segment   []byte
	data      []byte
}

// ReadSegmented receives total bytes delivered as a sequence of
// checksummed segments. Each round is started by a status command: 0 asks
// for the next segment, 1 asks for the current one again. The transfer
// ends when the byte count is exhausted in the same round that carries the
// final segment flag.
func (l *Link) ReadSegmented(total int) ([]byte, error) {
	if total <= 0 {
		return nil, newError(KindProtocolViolation,
			map[string]interface{}{"total": total},
			"invalid transfer length %d", total)
	}
	t := &segmentTransfer{
		link:      l,
		state:     stateRequesting,
		status:    segmentNext,
		remaining: total,
		data:      make([]byte, 0, total),
	}

	for {
		switch t.state {
		case stateRequesting:
			if err := t.request(); err != nil {
				return nil, err
			}
			t.state = stateReceiving

		case stateReceiving:
			ok, err := t.receive()
			if err != nil {
				return nil, err
			}
			if ok {
				t.state = stateAdvancing
			} else {
				t.state = stateRetrying
			}

		case stateRetrying:
			t.retries++
			l.stats.update(func(s *Statistics) {
				s.ChecksumFailures++
				s.SegmentRetries++
			})
			if t.retries >= MaxSegmentRetries {
				return nil, newError(KindChecksum,
					map[string]interface{}{"retries": t.retries, "received": len(t.data)},
					"segment failed %d times after %d bytes", t.retries, len(t.data))
			}
			l.log.WithFields(logrus.Fields{"retry": t.retries, "received": len(t.data)}).Debug("segment checksum failed")
			t.status = segmentRetransmit
			t.state = stateRequesting

		case stateAdvancing:
			done, err := t.advance()
			if err != nil {
				return nil, err
			}
			if done {
				t.state = stateComplete
			} else {
				t.state = stateRequesting
			}

		case stateComplete:
			return t.data, nil

		default:
			return nil, fmt.Errorf("invalid segment transfer state: %d", t.state)
		}
	}
}

func (t *segmentTransfer) request() error {
	_, err := t.link.SendCommand(strconv.Itoa(t.status))
	return err
}

// receive reads one segment and reports whether its checksum matched
func (t *segmentTransfer) receive() (bool, error) {
	h, err := t.link.ReadHeader(SegmentLengthWidth)
	if err != nil {
		return false, err
	}
	raw, err := t.link.readFull("segment data", h.Size+2)
	if err != nil {
		return false, err
	}

	payload, check, term := raw[:h.Size], raw[h.Size], raw[h.Size+1]
	if !VerifyChecksum(payload, check) {
		return false, nil
	}
	if term != CR {
		return false, newError(KindSeparatorMismatch,
			map[string]interface{}{"expected": byte(CR), "observed": term},
			"segment not terminated by CR, got 0x%02X", term)
	}

	t.header = h
	t.segment = payload
	return true, nil
}

// advance accepts the received segment and checks the completion invariant
func (t *segmentTransfer) advance() (bool, error) {
	t.retries = 0
	t.status = segmentNext
	t.data = append(t.data, t.segment...)
	t.remaining -= len(t.segment)
	t.link.stats.update(func(s *Statistics) { s.Segments++ })

	t.link.log.WithFields(logrus.Fields{
		"size":      len(t.segment),
		"remaining": t.remaining,
		"final":     t.header.Final(),
	}).Debug("segment received")

	final := t.header.Final()
	switch {
	case t.remaining == 0 && final:
		return true, nil
	case t.remaining < 0, t.remaining == 0, final:
		return false, newError(KindProtocolViolation,
			map[string]interface{}{"remaining": t.remaining, "final": final},
			"segment flag and data length disagree: %d bytes remaining, final=%v", t.remaining, final)
	}
	return false, nil
}
