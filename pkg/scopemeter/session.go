// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Session owns the connection to one ScopeMeter. The protocol is half
// duplex, so every exchange runs with the session locked.
type Session struct {
	mu       sync.Mutex
	link     *Link
	baudRate int
	timeout  time.Duration
	log      logrus.FieldLogger
	stats    *Statistics
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLogger sets the session logger
func WithLogger(log logrus.FieldLogger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithReadTimeout sets the per read timeout
func WithReadTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// NewSession wraps a port that is open at InitialBaudRate
func NewSession(port Port, opts ...SessionOption) (*Session, error) {
	s := &Session{
		baudRate: InitialBaudRate,
		timeout:  DefaultReadTimeout,
		stats:    NewStatistics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.link = NewLink(port, s.log, s.stats)
	s.log = s.link.log

	if err := port.SetReadTimeout(s.timeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return s, nil
}

// BaudRate returns the current client side baud rate
func (s *Session) BaudRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baudRate
}

// Stats returns the session statistics
func (s *Session) Stats() *Statistics {
	return s.stats
}

// Do runs fn with exclusive use of the link for one full exchange
func (s *Session) Do(ctx context.Context, fn func(l *Link) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.link)
}

// Negotiate moves the link from InitialBaudRate to FastBaudRate. The
// instrument may already be running at the fast rate, in which case the
// first request goes unanswered and is repeated after the client switches.
func (s *Session) Negotiate(ctx context.Context) error {
	return s.Do(ctx, func(l *Link) error {
		ack, answered, err := l.TrySendCommand(CmdBaudRate)
		if err != nil {
			return err
		}
		if err := l.port.SetBaudRate(FastBaudRate); err != nil {
			return fmt.Errorf("failed to set baud rate %d: %w", FastBaudRate, err)
		}
		s.baudRate = FastBaudRate

		if answered && ack.Outcome == AckSuccess {
			s.log.WithField("baud", FastBaudRate).Debug("baud rate accepted")
			return nil
		}

		s.log.WithField("baud", FastBaudRate).Debug("retrying baud rate command at new rate")
		if err := l.flushInput(); err != nil {
			return fmt.Errorf("failed to flush input: %w", err)
		}
		_, err = l.SendCommand(CmdBaudRate)
		return err
	})
}

// Identity is the reply to the ID command
type Identity struct {
	Model     string
	Firmware  string
	BuildDate time.Time
	Languages string
}

// ParseIdentity parses "model;firmware;YYYY-MM-DD;languages"
func ParseIdentity(line string) (Identity, error) {
	fields := strings.Split(line, ";")
	if len(fields) != 4 {
		return Identity{}, newError(KindMalformedIdentity,
			map[string]interface{}{"expected": 4, "observed": len(fields)},
			"expected 4 fields, got %d in %q", len(fields), line)
	}
	date, err := time.Parse("2006-01-02", fields[2])
	if err != nil {
		return Identity{}, newError(KindMalformedIdentity,
			map[string]interface{}{"date": fields[2]},
			"invalid build date %q", fields[2])
	}
	return Identity{
		Model:     fields[0],
		Firmware:  fields[1],
		BuildDate: date,
		Languages: fields[3],
	}, nil
}

// Identify queries the model, firmware version and build date
func (s *Session) Identify(ctx context.Context) (Identity, error) {
	var id Identity
	err := s.Do(ctx, func(l *Link) error {
		if _, err := l.SendCommand(CmdIdentify); err != nil {
			return err
		}
		line, err := l.ReadLine("identity")
		if err != nil {
			return err
		}
		id, err = ParseIdentity(line)
		return err
	})
	return id, err
}

// SetClock sets the instrument time and date
func (s *Session) SetClock(ctx context.Context, t time.Time) error {
	return s.Do(ctx, func(l *Link) error {
		if _, err := l.SendCommand(CmdWriteTime + " " + t.Format("15,04,05")); err != nil {
			return err
		}
		_, err := l.SendCommand(CmdWriteDate + " " + t.Format("2006,01,02"))
		return err
	})
}

// Screenshot downloads the screen image
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var image []byte
	err := s.Do(ctx, func(l *Link) error {
		if _, err := l.SendCommand(CmdScreenshot); err != nil {
			return err
		}
		total, err := expectInt(l, ',')
		if err != nil {
			return fmt.Errorf("screenshot length: %w", err)
		}
		s.log.WithField("size", humanize.Bytes(uint64(total))).Debug("screenshot announced")

		image, err = l.ReadSegmented(total)
		return err
	})
	return image, err
}
