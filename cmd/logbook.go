// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/scopereader/pkg/logbook"
)

var logbookCmd = &cobra.Command{
	Use:   "logbook [database]",
	Short: "List measurements kept in a logbook",
	Long: `List the measurements stored by "scopereader measure --logbook".

The database defaults to the logbook configured in scopereader.yaml or
SCOPEREADER_LOGBOOK.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogbook,
}

func init() {
	rootCmd.AddCommand(logbookCmd)
}

func runLogbook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Logbook
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no logbook given; pass a database file or set logbook in the config")
	}

	book := logbook.New(path)
	defer book.Close()

	entries, err := book.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("logbook: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "The logbook is empty")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "Recorded", "Title", "Operation", "Result", "Source")
	for _, e := range entries {
		t.Row(
			fmt.Sprintf("%d", e.ID),
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			e.Title,
			e.Operation,
			e.Result.String(),
			e.Source,
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}
