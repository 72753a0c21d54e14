// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

// instrument is an open, negotiated connection to a ScopeMeter
type instrument struct {
	cfg     *Config
	conn    Connection
	info    string
	session *scopemeter.Session
}

// openInstrument connects and switches the link to the fast baud rate
func openInstrument(ctx context.Context) (*instrument, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	conn, info, err := OpenConnection(cfg)
	if err != nil {
		return nil, err
	}

	session, err := scopemeter.NewSession(conn,
		scopemeter.WithLogger(logger.WithField("connection", info)),
		scopemeter.WithReadTimeout(cfg.Timeout))
	if err != nil {
		conn.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"connection": info,
		"baud":       scopemeter.FastBaudRate,
	}).Info("Negotiating baud rate")
	if err := session.Negotiate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("baud rate negotiation failed: %w", err)
	}

	return &instrument{cfg: cfg, conn: conn, info: info, session: session}, nil
}

// Close logs the link statistics and closes the connection
func (i *instrument) Close() error {
	logger.WithField("connection", i.info).Debug(i.session.Stats().Summary())
	return i.conn.Close()
}
