// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the connection by negotiating and identifying",
	Long: `Open the connection, switch to the fast baud rate and query the identity.

Exit codes:
  0 - Instrument identified before timeout
  1 - Instrument did not answer correctly within the timeout
  2 - Connection error

Useful for checking the cable and port before a download.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "wait", 10, "Seconds to wait for the instrument")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Scopereader - Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for the ScopeMeter...\n\n")

	session, err := scopemeter.NewSession(conn,
		scopemeter.WithLogger(logger),
		scopemeter.WithReadTimeout(cfg.Timeout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(probeTimeout)*time.Second)
	defer cancel()

	type probeResult struct {
		id  scopemeter.Identity
		err error
	}
	done := make(chan probeResult, 1)

	go func() {
		if err := session.Negotiate(ctx); err != nil {
			done <- probeResult{err: err}
			return
		}
		id, err := session.Identify(ctx)
		done <- probeResult{id: id, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "FAILED: %v\n", r.err)
			os.Exit(1)
		}
		fmt.Printf("SUCCESS: Instrument identified\n")
		for _, pair := range scopemeter.FormatIdentity(r.id) {
			fmt.Printf("  %s: %s\n", pair[0], pair[1])
		}
		fmt.Printf("  Baud: %d\n", session.BaudRate())
		fmt.Printf("  Link: %s\n", session.Stats().Summary())
		os.Exit(0)

	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "TIMEOUT: No answer within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
