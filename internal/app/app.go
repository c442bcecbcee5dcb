// Package app wires the views, the push listener, and the
// acknowledgement path into the root Bubble Tea model.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/auction-console/internal/ack"
	"github.com/nhle/auction-console/internal/alert"
	"github.com/nhle/auction-console/internal/api"
	"github.com/nhle/auction-console/internal/credential"
	"github.com/nhle/auction-console/internal/keys"
	"github.com/nhle/auction-console/internal/model"
	"github.com/nhle/auction-console/internal/push"
	"github.com/nhle/auction-console/internal/readstate"
	"github.com/nhle/auction-console/internal/ui"
	"github.com/nhle/auction-console/internal/ui/helpview"
	"github.com/nhle/auction-console/internal/ui/notifpanel"
	"github.com/nhle/auction-console/internal/ui/reviewtable"
	"github.com/nhle/auction-console/internal/ui/setup"
)

// ViewState identifies which view currently owns the content area.
type ViewState int

const (
	ViewSetup ViewState = iota
	ViewTable
	ViewNotifications
	ViewHelp
)

// reviewChannel is the push channel carrying seller-profile events.
const reviewChannel = "profiles.review"

// ackedLoadedMsg delivers the acknowledged-ID set from the read-state
// cache at startup and on refresh.
type ackedLoadedMsg struct {
	Acked map[string]bool
	Err   error
}

// listenerReadyMsg reports the outcome of dialing the push endpoint.
type listenerReadyMsg struct {
	Listener *push.Listener
	Err      error
}

// bellRequestMsg asks the user for the one-shot bell permission.
type bellRequestMsg struct{}

// Model is the root application model.
type Model struct {
	cfg     *model.AppConfig
	cfgPath string
	cache   readstate.Store
	log     zerolog.Logger
	keys    *keys.KeyMap
	layout  ui.Layout

	currentView  ViewState
	previousView ViewState

	setupView setup.Model
	helpView  helpview.Model
	panel     notifpanel.Model
	table     reviewtable.Model

	client   *api.Client
	gateway  *ack.Gateway
	listener *push.Listener
	gate     *alert.Gate

	started    bool
	stale      bool
	bellPrompt bool
}

// New creates the root model. With a complete config and token it goes
// straight to the review table; otherwise it opens the first-run setup
// form.
func New(cfg *model.AppConfig, cfgPath, token string, cache readstate.Store, log zerolog.Logger) Model {
	m := Model{
		cfg:     cfg,
		cfgPath: cfgPath,
		cache:   cache,
		log:     log,
		keys:    keys.DefaultKeyMap(),
		layout:  ui.NewLayout(80, 24),
	}
	m.helpView = helpview.New(m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())

	if cfg.Server.BaseURL == "" || cfg.Server.UserID == "" || token == "" {
		m.currentView = ViewSetup
		m.setupView = setup.New(
			cfg.Server.BaseURL, cfg.Server.UserID,
			m.layout.ContentWidth(), m.layout.ContentHeight(),
		)
		return m
	}

	m.initServices(token)
	m.currentView = ViewTable
	return m
}

// initServices builds everything that needs an authenticated API client.
func (m *Model) initServices(token string) {
	m.client = api.NewClient(m.cfg.Server.BaseURL, token, m.cfg.Feed.PageSize)
	m.gateway = ack.New(m.client, m.cache, m.log)
	m.gate = alert.NewGate(alert.ParsePermission(m.cfg.Alert.Permission), alert.Bell{})

	m.panel = notifpanel.New(
		m.client, m.gateway, m.cfg.Server.UserID, m.keys, m.log,
		m.layout.ContentWidth(), m.layout.ContentHeight(),
	)
	m.table = reviewtable.New(
		m.client, m.keys, m.log, m.cfg.Feed.HighlightDuration(),
		m.layout.ContentWidth(), m.layout.ContentHeight(),
	)
	m.started = true
}

// Init starts the setup form, or the feeds and the push connection.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}
	return m.startCmds()
}

// startCmds kicks off the acknowledged-set load, the table mount, and
// the push dial. The notification panel mounts once the acked set is in.
func (m *Model) startCmds() tea.Cmd {
	return tea.Batch(
		m.loadAcked(),
		m.table.Mount(),
		m.connectPush(),
	)
}

// loadAcked reads the acknowledged-ID set from the read-state cache.
func (m Model) loadAcked() tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		acked, err := cache.Acknowledged(ctx)
		return ackedLoadedMsg{Acked: acked, Err: err}
	}
}

// connectPush dials the push endpoint off the UI loop.
func (m Model) connectPush() tea.Cmd {
	cfg := m.cfg
	gate := m.gate
	log := m.log
	return func() tea.Msg {
		channels := []string{
			"user." + cfg.Server.UserID,
			reviewChannel,
		}
		l, err := push.Dial(cfg.Server.WebSocketURL(), channels, push.Options{
			MaxRetries: cfg.Push.MaxRetries,
			RetryDelay: cfg.Push.RetryDelay(),
			Notifier:   gate,
			Logger:     &log,
		})
		return listenerReadyMsg{Listener: l, Err: err}
	}
}

// waitForBellRequest blocks for the gate's one-shot permission request.
func (m Model) waitForBellRequest() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		<-gate.Requests()
		return bellRequestMsg{}
	}
}

// Update handles all application messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Width = msg.Width
		m.layout.Height = msg.Height
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		if m.currentView == ViewSetup {
			m.setupView.SetSize(w, h)
		}
		m.helpView.SetSize(w, h)
		if m.started {
			m.panel.SetSize(w, h)
			m.table.SetSize(w, h)
		}
		return m, nil

	case setup.DoneMsg:
		return m.finishSetup(msg)

	case setup.CancelMsg:
		return m, tea.Quit

	case ackedLoadedMsg:
		if msg.Err != nil {
			// An unreadable cache only costs sticky-read across restarts.
			m.log.Warn().Err(msg.Err).Msg("loading acknowledged set failed")
		}
		return m, m.panel.Mount(msg.Acked)

	case listenerReadyMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("push connection failed")
			m.stale = true
			return m, nil
		}
		if m.listener != nil {
			m.listener.Close()
		}
		m.listener = msg.Listener
		m.stale = false
		cmds := []tea.Cmd{m.listener.WaitForEvent()}
		if m.gate.State() == alert.PermissionUnset {
			cmds = append(cmds, m.waitForBellRequest())
		}
		return m, tea.Batch(cmds...)

	case push.NotificationMsg:
		cmd := m.panel.ApplyPush(msg.Notification, time.Now())
		return m, tea.Batch(cmd, m.listener.WaitForEvent())

	case push.ProfileMsg:
		cmd := m.table.ApplyPush(msg.Profile, msg.Created, time.Now())
		return m, tea.Batch(cmd, m.listener.WaitForEvent())

	case push.StaleMsg:
		// Keep the last known good feed; the header tells the user to
		// refresh. No automatic redial past the listener's own retries.
		m.stale = true
		return m, nil

	case bellRequestMsg:
		m.bellPrompt = true
		return m, nil

	case ack.ResultMsg:
		// Optimistic policy: failures were already logged by the gateway
		// and local state stands. Nothing to do here.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToView(msg)
}

// finishSetup persists the captured settings and starts the console.
func (m Model) finishSetup(msg setup.DoneMsg) (tea.Model, tea.Cmd) {
	m.cfg.Server.BaseURL = msg.BaseURL
	m.cfg.Server.UserID = msg.UserID

	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		m.log.Error().Err(err).Str("path", m.cfgPath).Msg("saving config failed")
	}
	if err := credential.Set(credential.APITokenKey, msg.Token); err != nil {
		m.log.Error().Err(err).Msg("storing API token failed")
	}

	m.initServices(msg.Token)
	m.panel.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
	m.table.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
	m.currentView = ViewTable
	return m, m.startCmds()
}

// handleKey dispatches global keys, then the per-view handlers.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.teardown()
	}

	if m.currentView == ViewSetup {
		return m.routeToView(msg)
	}

	if m.bellPrompt {
		switch {
		case key.Matches(msg, m.keys.AllowBell):
			return m.decideBell(alert.PermissionGranted)
		case key.Matches(msg, m.keys.DenyBell):
			return m.decideBell(alert.PermissionDenied)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.teardown()

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil

	case key.Matches(msg, m.keys.Notifications):
		if m.currentView == ViewNotifications {
			m.currentView = ViewTable
		} else {
			m.currentView = ViewNotifications
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewNotifications || m.currentView == ViewHelp {
			m.currentView = ViewTable
			return m, nil
		}

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}

	return m.routeToView(msg)
}

// decideBell records the one-shot alert decision and persists it.
func (m Model) decideBell(p alert.Permission) (tea.Model, tea.Cmd) {
	m.bellPrompt = false
	m.gate.SetPermission(p)
	m.cfg.Alert.Permission = string(p)
	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		m.log.Warn().Err(err).Msg("persisting alert permission failed")
	}
	return m, nil
}

// refresh remounts both feeds and, if the connection went stale, dials
// the push endpoint again.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{
		m.loadAcked(),
		m.table.Mount(),
	}
	if m.stale {
		if m.listener != nil {
			m.listener.Close()
			m.listener = nil
		}
		cmds = append(cmds, m.connectPush())
	}
	return m, tea.Batch(cmds...)
}

// teardown releases the connection and the cache before quitting.
func (m Model) teardown() tea.Cmd {
	if m.listener != nil {
		m.listener.Close()
	}
	if err := m.cache.Close(); err != nil {
		m.log.Warn().Err(err).Msg("closing read-state cache failed")
	}
	return tea.Quit
}

// routeToView forwards a message to the active view. Non-key messages
// are broadcast to both feeds regardless of which view is on top: page
// loads and highlight expiries for a backgrounded feed must still land.
func (m Model) routeToView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.currentView == ViewSetup {
		m.setupView, cmd = m.setupView.Update(msg)
		return m, cmd
	}

	if _, isKey := msg.(tea.KeyMsg); !isKey && m.started {
		var panelCmd, tableCmd tea.Cmd
		m.panel, panelCmd = m.panel.Update(msg)
		m.table, tableCmd = m.table.Update(msg)
		return m, tea.Batch(panelCmd, tableCmd)
	}

	switch m.currentView {
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewNotifications:
		m.panel, cmd = m.panel.Update(msg)
	default:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// View renders the active view inside the header/status-bar frame.
func (m Model) View() string {
	if m.currentView == ViewSetup {
		return m.setupView.View()
	}

	header := m.layout.RenderHeader("Auction Console", m.unreadCount(), m.connStatus())

	var content string
	switch m.currentView {
	case ViewHelp:
		content = m.helpView.View()
	case ViewNotifications:
		content = m.panel.View()
	default:
		content = m.table.View()
	}

	return m.layout.RenderWithFrame(header, content, m.layout.RenderStatusBar(m.statusHints()))
}

// unreadCount is the header badge value, derived from the panel feed.
func (m Model) unreadCount() int {
	if !m.started {
		return 0
	}
	return m.panel.UnreadCount()
}

// connStatus describes the push connection for the header.
func (m Model) connStatus() string {
	if m.stale {
		return "stale · press r"
	}
	if m.listener == nil {
		return "connecting"
	}
	return "live"
}

// statusHints picks the status-bar text for the current state.
func (m Model) statusHints() string {
	if m.bellPrompt {
		return "Ring the terminal bell for new notifications?  b: yes  x: no"
	}

	switch m.currentView {
	case ViewNotifications:
		return "enter: mark read  A: mark all  esc: back  r: refresh  q: quit"
	case ViewHelp:
		return "?: close help  q: quit"
	default:
		return "n: notifications  r: refresh  ?: help  q: quit"
	}
}
