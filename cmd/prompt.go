// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// errCancelled is returned when the user leaves a prompt with esc or ctrl+c
var errCancelled = errors.New("cancelled")

//////////////////////////////////////////////////////////////
// Menu
//////////////////////////////////////////////////////////////

// menuItem is one lettered menu entry
type menuItem struct {
	title string
	desc  string
}

// Implement list.DefaultItem interface
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// menuModel picks one entry, by letter or by cursor and enter
type menuModel struct {
	list   list.Model
	choice int
	done   bool
}

func menuLetter(index int) byte {
	return byte('a' + index)
}

func newMenuModel(title string, items []menuItem) menuModel {
	listItems := make([]list.Item, len(items))
	showDesc := false
	for i, item := range items {
		item.title = fmt.Sprintf("(%c) %s", menuLetter(i), item.title)
		listItems[i] = item
		showDesc = showDesc || item.desc != ""
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = showDesc
	rowHeight := 1
	if showDesc {
		rowHeight = 2
	}
	delegate.SetHeight(rowHeight)

	height := len(items)*(rowHeight+delegate.Spacing()) + 4
	l := list.New(listItems, delegate, 72, height)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return menuModel{list: l, choice: -1}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit

		case "enter":
			m.choice = m.list.Index()
			m.done = true
			return m, tea.Quit
		}

		if len(msg.Runes) == 1 {
			index := int(msg.Runes[0] - 'a')
			if index >= 0 && index < len(m.list.Items()) {
				m.choice = index
				m.done = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m menuModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View() + "\n"
}

// chooseOne shows a lettered menu and returns the chosen index
func chooseOne(title string, items []menuItem) (int, error) {
	final, err := tea.NewProgram(newMenuModel(title, items)).Run()
	if err != nil {
		return -1, fmt.Errorf("menu failed: %w", err)
	}
	m := final.(menuModel)
	if m.choice < 0 {
		return -1, errCancelled
	}
	return m.choice, nil
}

//////////////////////////////////////////////////////////////
// Text input
//////////////////////////////////////////////////////////////

// inputModel reads one line of text
type inputModel struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func newInputModel(prompt, placeholder string) inputModel {
	ti := textinput.New()
	ti.Prompt = prompt + " "
	ti.Placeholder = placeholder
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()
	return inputModel{input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}

// promptText reads a line of text; an empty answer is allowed
func promptText(prompt, placeholder string) (string, error) {
	final, err := tea.NewProgram(newInputModel(prompt, placeholder)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", errCancelled
	}
	return m.input.Value(), nil
}

// waitForEnter blocks until the user confirms
func waitForEnter(prompt string) error {
	_, err := promptText(prompt, "")
	return err
}
