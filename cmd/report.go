// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// renderDetails lays out label/value pairs with right aligned labels
func renderDetails(title string, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(title))
	for _, p := range pairs {
		s.WriteString("\n")
		s.WriteString(labelStyle.Width(width).Align(lipgloss.Right).Render(p[0]))
		s.WriteString(": ")
		s.WriteString(valueStyle.Render(p[1]))
	}
	return boxStyle.Render(s.String())
}

// renderResults draws the titled results as a two column table
func renderResults(results []scopemeter.Result) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle().Align(lipgloss.Right)
			}
			return lipgloss.NewStyle().Align(lipgloss.Left)
		})

	for _, r := range results {
		t.Row(r.Title, r.String())
	}
	return t.String()
}
