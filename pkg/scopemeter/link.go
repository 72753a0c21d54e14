// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Port is the byte transport to the instrument. A Read that returns no
// bytes means the read timeout elapsed.
type Port interface {
	io.Reader
	io.Writer
	SetReadTimeout(t time.Duration) error
	SetBaudRate(rate int) error
}

// inputFlusher is implemented by ports that can discard pending input
type inputFlusher interface {
	ResetInputBuffer() error
}

// Link performs the request/response primitives over a Port. A Link does
// no locking; use Session.Do to get one with the port held exclusively.
type Link struct {
	port  Port
	log   logrus.FieldLogger
	stats *Statistics
}

// NewLink wraps a port. log and stats may be nil.
func NewLink(port Port, log logrus.FieldLogger, stats *Statistics) *Link {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Link{port: port, log: log, stats: stats}
}

func (l *Link) write(data []byte) error {
	n, err := l.port.Write(data)
	l.stats.update(func(s *Statistics) { s.BytesWritten += uint64(n) })
	if err != nil {
		return fmt.Errorf("write to port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("short write to port: %d of %d bytes", n, len(data))
	}
	return nil
}

// readFull reads exactly n bytes. It returns the bytes received so far
// together with ErrTimeout when the port goes quiet.
func (l *Link) readFull(what string, n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := l.port.Read(buf[got:])
		got += m
		if err != nil && !errors.Is(err, io.EOF) {
			l.stats.update(func(s *Statistics) { s.BytesRead += uint64(got) })
			return buf[:got], fmt.Errorf("read %s: %w", what, err)
		}
		if m == 0 {
			l.stats.update(func(s *Statistics) {
				s.BytesRead += uint64(got)
				s.Timeouts++
			})
			return buf[:got], timeoutError(what, n, got)
		}
	}
	l.stats.update(func(s *Statistics) { s.BytesRead += uint64(n) })
	return buf, nil
}

// ReadByte reads a single byte, so a Link can feed ReadDecimalField
func (l *Link) ReadByte() (byte, error) {
	b, err := l.readFull("byte", 1)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return 0, io.EOF
		}
		return 0, err
	}
	return b[0], nil
}

// ExpectByte reads one byte that must equal want
func (l *Link) ExpectByte(what string, want byte) error {
	b, err := l.readFull(what, 1)
	if err != nil {
		return err
	}
	if b[0] != want {
		return newError(KindSeparatorMismatch,
			map[string]interface{}{"expected": want, "observed": b[0]},
			"%s: expected %q, got %q", what, want, b[0])
	}
	return nil
}

// ReadLine reads bytes up to and excluding the next CR
func (l *Link) ReadLine(what string) (string, error) {
	var line []byte
	for {
		b, err := l.readFull(what, 1)
		if err != nil {
			return string(line), err
		}
		if b[0] == CR {
			return string(line), nil
		}
		line = append(line, b[0])
	}
}

// ReadDecimal reads one ASCII decimal field with any separator
func (l *Link) ReadDecimal() (DecimalField, error) {
	return ReadDecimalField(l)
}

// ExpectDecimal reads one ASCII decimal field that must end with sep
func (l *Link) ExpectDecimal(sep byte) (DecimalField, error) {
	return ExpectDecimal(l, sep)
}

func (l *Link) exchange(command string) (Ack, error) {
	data := make([]byte, 0, len(command)+1)
	data = append(data, command...)
	data = append(data, CR)

	l.stats.update(func(s *Statistics) { s.Commands++ })
	l.log.WithField("command", command).Debug("sending command")
	if err := l.write(data); err != nil {
		return Ack{}, err
	}

	raw, err := l.readFull("command acknowledgement", 2)
	if err != nil {
		return Ack{}, err
	}
	return ParseAck(raw)
}

// SendCommand sends command and requires a successful acknowledgement
func (l *Link) SendCommand(command string) (Ack, error) {
	ack, err := l.exchange(command)
	if err != nil {
		return ack, fmt.Errorf("%s: %w", command, err)
	}
	if err := ack.Err(); err != nil {
		l.stats.update(func(s *Statistics) { s.AckFailures[ack.Outcome]++ })
		l.log.WithFields(logrus.Fields{
			"command": command,
			"outcome": ack.Outcome.String(),
		}).Debug("command rejected")
		return ack, fmt.Errorf("%s: %w", command, err)
	}
	return ack, nil
}

// TrySendCommand sends command without treating a missing or garbled
// acknowledgement as fatal. answered is false when no well formed
// acknowledgement arrived; a rejected command is returned, not raised.
func (l *Link) TrySendCommand(command string) (ack Ack, answered bool, err error) {
	ack, err = l.exchange(command)
	if err != nil {
		if errors.Is(err, ErrTimeout) || errors.Is(err, ErrMalformedAck) {
			l.log.WithField("command", command).WithError(err).Debug("no acknowledgement")
			return Ack{}, false, nil
		}
		return Ack{}, false, fmt.Errorf("%s: %w", command, err)
	}
	return ack, true, nil
}

// flushInput discards stale input when the port supports it
func (l *Link) flushInput() error {
	if f, ok := l.port.(inputFlusher); ok {
		return f.ResetInputBuffer()
	}
	return nil
}
