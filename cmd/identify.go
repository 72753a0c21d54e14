// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Show the instrument model, firmware and build date",
	Args:  cobra.NoArgs,
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	inst, err := openInstrument(cmd.Context())
	if err != nil {
		return err
	}
	defer inst.Close()

	logger.Info("Querying identity")
	id, err := inst.session.Identify(cmd.Context())
	if err != nil {
		return fmt.Errorf("identify failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderDetails("ScopeMeter", scopemeter.FormatIdentity(id)))
	return nil
}
