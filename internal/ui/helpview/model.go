// Package helpview renders the expanded keybinding reference.
package helpview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/auction-console/internal/keys"
	"github.com/nhle/auction-console/internal/theme"
)

// Model is the static help view.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a help view over the given keymap.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Update is a no-op; the root model handles closing the view.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders all keybindings grouped by category.
func (m Model) View() string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)

	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Keybindings"))
	b.WriteString("\n\n")

	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(padRight(h.Key, 8)))
			b.WriteString(h.Desc)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

// padRight pads s with spaces to at least n cells.
func padRight(s string, n int) string {
	if len(s) >= n {
		return s + " "
	}
	return s + strings.Repeat(" ", n-len(s))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
