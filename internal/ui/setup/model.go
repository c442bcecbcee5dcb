// Package setup is the first-run form that captures the backend
// connection settings. The token goes to the system keyring; the rest
// is written to the config file.
package setup

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// DoneMsg carries the completed connection settings.
type DoneMsg struct {
	BaseURL string
	UserID  string
	Token   string
}

// CancelMsg is sent when the user aborts the form.
type CancelMsg struct{}

// fields backs the form inputs. Held behind a pointer so the huh form
// keeps writing to the same storage as the Model value is copied
// through Update.
type fields struct {
	baseURL string
	userID  string
	token   string
}

// Model is the first-run setup view.
type Model struct {
	form   *huh.Form
	vals   *fields
	width  int
	height int
}

// New creates the setup form pre-filled with any known values.
func New(baseURL, userID string, width, height int) Model {
	vals := &fields{baseURL: baseURL, userID: userID}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Placeholder("https://api.mecha.example.com").
				Value(&vals.baseURL),
			huh.NewInput().
				Title("Moderator user ID").
				Description("Names your notification channel and the read-all endpoint.").
				Value(&vals.userID),
			huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Description("Stored in the system keyring, never in the config file.").
				Value(&vals.token),
		),
	)

	return Model{form: form, vals: vals, width: width, height: height}
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and emits DoneMsg on completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		vals := *m.vals
		return m, func() tea.Msg {
			return DoneMsg{
				BaseURL: vals.baseURL,
				UserID:  vals.userID,
				Token:   vals.token,
			}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	return m.form.View()
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(width).WithHeight(height)
}
