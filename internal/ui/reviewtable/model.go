// Package reviewtable is the live seller-profile review view: a table
// kept current by push updates, with a transient highlight on rows
// that just changed and a capped recent-activity log for operator
// visibility.
package reviewtable

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nhle/auction-console/internal/api"
	"github.com/nhle/auction-console/internal/feed"
	"github.com/nhle/auction-console/internal/keys"
	"github.com/nhle/auction-console/internal/model"
	"github.com/nhle/auction-console/internal/theme"
)

// fetchTimeout is the maximum time allowed for a single page fetch.
const fetchTimeout = 30 * time.Second

// maxActivity caps the recent-activity log; the oldest entry is
// evicted first.
const maxActivity = 10

// activityHeight is the vertical space reserved under the table.
const activityHeight = maxActivity + 2

// PageLoadedMsg is sent when a profile history page fetch completes.
// Stale sessions are dropped so a late response after a remount is a
// no-op.
type PageLoadedMsg struct {
	Session int
	Page    int
	Items   []model.ProfileRecord
	HasMore bool
	Err     error
}

// highlightExpiredMsg clears a row highlight. Gen ties the expiry to
// the update that armed it: a newer update for the same row restarts
// the timer, and the superseded expiry must not clear the newer
// highlight.
type highlightExpiredMsg struct {
	ID  string
	Gen int
}

// Model is the review table view component.
type Model struct {
	feed         *feed.State[model.ProfileRecord]
	client       *api.Client
	keys         *keys.KeyMap
	log          zerolog.Logger
	list         list.Model
	highlights   map[string]int
	gen          int
	highlightFor time.Duration
	activity     []string
	session      int
	loading      bool
	width        int
	height       int
}

// New creates a review table model.
func New(
	client *api.Client,
	k *keys.KeyMap,
	log zerolog.Logger,
	highlightFor time.Duration,
	width, height int,
) Model {
	highlights := make(map[string]int)

	l := list.New([]list.Item{}, rowDelegate{highlights: highlights}, width, height-activityHeight)
	l.Title = "Profile Review"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		feed:         feed.New[model.ProfileRecord](nil),
		client:       client,
		keys:         k,
		log:          log,
		list:         l,
		highlights:   highlights,
		highlightFor: highlightFor,
		width:        width,
		height:       height,
	}
}

// Mount resets the table and kicks off the initial history page.
func (m *Model) Mount() tea.Cmd {
	m.session++
	m.feed = feed.New[model.ProfileRecord](nil)
	m.loading = true
	m.list.SetItems(nil)
	for id := range m.highlights {
		delete(m.highlights, id)
	}
	return m.loadPage(m.session, m.feed.NextPage())
}

// Unmount invalidates in-flight fetches.
func (m *Model) Unmount() {
	m.session++
}

// Activity returns the recent-activity log, newest last.
func (m Model) Activity() []string {
	return m.activity
}

// Highlighted reports whether a row currently carries the just-updated
// mark.
func (m Model) Highlighted(id string) bool {
	_, ok := m.highlights[id]
	return ok
}

// ApplyPush merges a pushed profile record, arms (or restarts) its row
// highlight, scrolls the row into view, and logs the activity.
func (m *Model) ApplyPush(p model.ProfileRecord, created bool, now time.Time) tea.Cmd {
	m.feed.MergePush(p, now)

	// Restart, not stack: the newest generation wins and the highlight
	// duration is measured from the most recent update.
	m.gen++
	gen := m.gen
	m.highlights[p.ID] = gen

	verb := "updated"
	if created {
		verb = "submitted"
	}
	m.appendActivity(fmt.Sprintf(
		"%s  %s %s %q → %s",
		now.Format("15:04:05"), p.SellerName, verb, p.GundamName, p.Status,
	))

	syncCmd := m.syncList()
	if idx := m.feed.Position(p.ID); idx >= 0 {
		m.list.Select(idx)
	}

	id := p.ID
	expire := tea.Tick(m.highlightFor, func(time.Time) tea.Msg {
		return highlightExpiredMsg{ID: id, Gen: gen}
	})

	return tea.Batch(syncCmd, expire)
}

// Update handles messages for the review table.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case highlightExpiredMsg:
		// Only the generation that armed this timer may clear the mark.
		if m.highlights[msg.ID] == msg.Gen {
			delete(m.highlights, msg.ID)
		}
		return m, nil

	case PageLoadedMsg:
		if msg.Session != m.session {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Int("page", msg.Page).
				Msg("profile page load failed")
			return m, nil
		}
		m.feed.MergeHistory(msg.Items)
		m.feed.SetHasMore(msg.HasMore)
		m.feed.AdvancePage()
		return m, m.syncList()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if more := m.maybeLoadMore(); more != nil {
		return m, tea.Batch(cmd, more)
	}
	return m, cmd
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

		result, err := client.ListProfiles(ctx, page)
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

// appendActivity adds one log line, evicting the oldest past the cap.
func (m *Model) appendActivity(line string) {
	m.activity = append(m.activity, line)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
}

// syncList rebuilds the bubbles list rows from the feed entries.
func (m *Model) syncList() tea.Cmd {
	entries := m.feed.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = profileItem{entry: e}
	}
	return m.list.SetItems(items)
}

// View renders the table above the recent-activity log.
func (m Model) View() string {
	var table string
	if m.feed.Len() == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - activityHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		if m.loading {
			table = style.Render("Loading profiles...")
		} else {
			table = style.Render("No profile applications.")
		}
	} else {
		table = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, table, m.renderActivity())
}

// renderActivity draws the capped recent-activity log.
func (m Model) renderActivity() string {
	var b strings.Builder
	b.WriteString(theme.DimmedStyle.Bold(true).Render("Recent activity"))
	b.WriteString("\n")
	if len(m.activity) == 0 {
		b.WriteString(theme.ActivityStyle.Render("(none yet)"))
		return b.String()
	}
	for i := len(m.activity) - 1; i >= 0; i-- {
		b.WriteString(theme.ActivityStyle.Render(m.activity[i]))
		if i > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SetSize updates the table dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-activityHeight)
}
