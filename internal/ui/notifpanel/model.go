// Package notifpanel is the notification feed view: a merged,
// de-duplicated list of notifications with an unread badge, relative
// times, infinite scroll over the paginated history, and mark-read
// acknowledgements.
package notifpanel

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nhle/auction-console/internal/ack"
	"github.com/nhle/auction-console/internal/api"
	"github.com/nhle/auction-console/internal/feed"
	"github.com/nhle/auction-console/internal/keys"
	"github.com/nhle/auction-console/internal/model"
	"github.com/nhle/auction-console/internal/theme"
)

// fetchTimeout is the maximum time allowed for a single page fetch.
const fetchTimeout = 30 * time.Second

// PageLoadedMsg is sent when a history page fetch completes. Session
// identifies the mount the fetch belongs to; stale sessions are
// dropped so a late response after a remount is a no-op.
type PageLoadedMsg struct {
	Session int
	Page    int
	Items   []model.Notification
	HasMore bool
	Err     error
}

// Model is the notification panel view component.
type Model struct {
	feed    *feed.State[model.Notification]
	client  *api.Client
	gateway *ack.Gateway
	keys    *keys.KeyMap
	log     zerolog.Logger
	list    list.Model
	userID  string
	session int
	loading bool
	width   int
	height  int
}

// New creates a notification panel. The feed is empty until Mount.
func New(
	client *api.Client,
	gateway *ack.Gateway,
	userID string,
	k *keys.KeyMap,
	log zerolog.Logger,
	width, height int,
) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		feed:    feed.New[model.Notification](nil),
		client:  client,
		gateway: gateway,
		keys:    k,
		log:     log,
		list:    l,
		userID:  userID,
		width:   width,
		height:  height,
	}
}

// Mount resets the panel around the acknowledged-ID set and kicks off
// the initial history page. Any in-flight fetch from a previous mount
// is invalidated by the session bump.
func (m *Model) Mount(acked map[string]bool) tea.Cmd {
	m.session++
	m.feed = feed.New[model.Notification](acked)
	m.loading = true
	m.list.SetItems(nil)
	return m.loadPage(m.session, m.feed.NextPage())
}

// Unmount invalidates in-flight fetches. The merged view is discarded
// with the model; only the read-state cache persists.
func (m *Model) Unmount() {
	m.session++
}

// UnreadCount returns the derived unread total for the header badge.
func (m Model) UnreadCount() int {
	return m.feed.UnreadCount()
}

// ApplyPush merges a push-origin notification into the feed.
func (m *Model) ApplyPush(n model.Notification, now time.Time) tea.Cmd {
	m.feed.MergePush(n, now)
	return m.syncList()
}

// Update handles messages for the notification panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		if msg.Session != m.session {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			// Degrade to last known good state; the user can re-trigger
			// by scrolling. No automatic retry against a failing endpoint.
			m.log.Warn().Err(msg.Err).Int("page", msg.Page).
				Msg("notification page load failed")
			return m, nil
		}
		m.feed.MergeHistory(msg.Items)
		m.feed.SetHasMore(msg.HasMore)
		m.feed.AdvancePage()
		return m, m.syncList()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.MarkRead):
			return m.markSelectedRead()

		case key.Matches(msg, m.keys.MarkAll):
			ids := m.feed.MarkAllRead()
			if len(ids) == 0 {
				return m, nil
			}
			return m, tea.Batch(
				m.syncList(),
				m.gateway.MarkAll(m.userID, ids),
			)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	// Infinite scroll: reaching the end-of-list sentinel loads the next
	// page, gated on "more pages exist" and "not already loading" so the
	// same page is never requested twice concurrently.
	if more := m.maybeLoadMore(); more != nil {
		return m, tea.Batch(cmd, more)
	}
	return m, cmd
}

// markSelectedRead optimistically marks the selected notification read
// and fires the acknowledgement.
func (m Model) markSelectedRead() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(notifItem)
	if !ok {
		return m, nil
	}
	if item.entry.Read {
		return m, nil
	}

	id := item.entry.Item.ID
	m.feed.MarkRead(id)
	return m, tea.Batch(
		m.syncList(),
		m.gateway.MarkOne(id),
	)
}

// maybeLoadMore returns a page-load command when the cursor sits on
// the last row and more history is expected.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.loading || !m.feed.HasMore() {
		return nil
	}
	n := len(m.list.Items())
	if n == 0 || m.list.Index() < n-1 {
		return nil
	}
	m.loading = true
	return m.loadPage(m.session, m.feed.NextPage())
}

// loadPage returns a tea.Cmd that fetches one history page.
func (m Model) loadPage(session, page int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := client.ListNotifications(ctx, page)
		if err != nil {
			return PageLoadedMsg{Session: session, Page: page, Err: err}
		}
		return PageLoadedMsg{
			Session: session,
			Page:    page,
			Items:   result.Items,
			HasMore: result.HasMore,
		}
	}
}

// syncList rebuilds the bubbles list items from the feed entries.
func (m *Model) syncList() tea.Cmd {
	entries := m.feed.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = notifItem{entry: e}
	}
	return m.list.SetItems(items)
}

// View renders the notification panel.
func (m Model) View() string {
	if m.feed.Len() == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		if m.loading {
			return style.Render("Loading notifications...")
		}
		return style.Render("No notifications.")
	}

	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
