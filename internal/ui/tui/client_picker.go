// Package tui provides interactive terminal components using BubbleTea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// ClientPickerResult contains the outcome of the client picker.
type ClientPickerResult struct {
	// Confirmed is false when the user quit without selecting.
	Confirmed bool
	// Clients holds the selected client ids in display order.
	Clients []model.ClientID
}

// clientPickerKeyMap defines the key bindings for the client picker.
type clientPickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func defaultClientPickerKeyMap() clientPickerKeyMap {
	return clientPickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var clientPickerStyles = struct {
	Title    lipgloss.Style
	Item     lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).MarginBottom(1),
	Item:     lipgloss.NewStyle().PaddingLeft(2),
	Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
	Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
}

// ClientPickerModel is the BubbleTea model for multi-selecting clients.
type ClientPickerModel struct {
	clients  []model.ClientID
	selected map[int]bool
	cursor   int
	keys     clientPickerKeyMap
	result   ClientPickerResult
	quitting bool
}

// NewClientPicker creates a picker over the given clients, with the
// preselected set already toggled on.
func NewClientPicker(clients, preselected []model.ClientID) ClientPickerModel {
	selected := make(map[int]bool)
	for i, c := range clients {
		for _, p := range preselected {
			if c == p {
				selected[i] = true
			}
		}
	}
	return ClientPickerModel{
		clients:  clients,
		selected: selected,
		keys:     defaultClientPickerKeyMap(),
	}
}

// Init implements tea.Model.
func (m ClientPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ClientPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.clients)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, m.keys.Confirm):
		m.result.Confirmed = true
		for i, c := range m.clients {
			if m.selected[i] {
				m.result.Clients = append(m.result.Clients, c)
			}
		}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m ClientPickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(clientPickerStyles.Title.Render("Select clients to sync"))
	sb.WriteString("\n")

	for i, client := range m.clients {
		cursor := "  "
		if i == m.cursor {
			cursor = clientPickerStyles.Cursor.Render("> ")
		}
		check := "[ ]"
		name := clientPickerStyles.Item.Render(string(client))
		if m.selected[i] {
			check = clientPickerStyles.Selected.Render("[x]")
			name = clientPickerStyles.Selected.Render(string(client))
		}
		sb.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, name))
	}

	sb.WriteString(clientPickerStyles.Help.Render(
		"↑/↓ move · space toggle · enter confirm · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

// Result returns the picker outcome after the program has finished.
func (m ClientPickerModel) Result() ClientPickerResult {
	return m.result
}

// PickClients runs the picker and returns the selection.
func PickClients(clients, preselected []model.ClientID) (ClientPickerResult, error) {
	program := tea.NewProgram(NewClientPicker(clients, preselected))
	final, err := program.Run()
	if err != nil {
		return ClientPickerResult{}, fmt.Errorf("client picker failed: %w", err)
	}
	picker, ok := final.(ClientPickerModel)
	if !ok {
		return ClientPickerResult{}, fmt.Errorf("unexpected picker model type %T", final)
	}
	return picker.Result(), nil
}
