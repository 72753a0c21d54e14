// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var datetimeCmd = &cobra.Command{
	Use:   "datetime",
	Short: "Set the instrument clock to the local time",
	Long: `Set the instrument time and date from the local clock.

The time sent is one second ahead, covering the time the two commands take
at the fast baud rate.`,
	Args: cobra.NoArgs,
	RunE: runDatetime,
}

func init() {
	rootCmd.AddCommand(datetimeCmd)
}

func runDatetime(cmd *cobra.Command, args []string) error {
	inst, err := openInstrument(cmd.Context())
	if err != nil {
		return err
	}
	defer inst.Close()

	now := time.Now().Add(time.Second)
	logger.WithField("time", now.Format(time.DateTime)).Info("Setting date and time")
	if err := inst.session.SetClock(cmd.Context(), now); err != nil {
		return fmt.Errorf("setting clock failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Clock set to %s\n", now.Format("15:04:05 on January 02, 2006"))
	return nil
}
