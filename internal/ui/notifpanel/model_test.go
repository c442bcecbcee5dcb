package notifpanel

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/auction-console/internal/ack"
	"github.com/nhle/auction-console/internal/api"
	"github.com/nhle/auction-console/internal/keys"
	"github.com/nhle/auction-console/internal/model"
	"github.com/nhle/auction-console/internal/readstate"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	client := api.NewClient("http://unreachable.invalid", "t", 20)
	gateway := ack.New(client, readstate.NewMemoryStore(), zerolog.Nop())
	return New(client, gateway, "42", keys.DefaultKeyMap(), zerolog.Nop(), 80, 24)
}

func notif(id string, sec int, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Message:   "outbid on lot 7",
		Channel:   "user.42",
		Read:      read,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, sec, 0, time.UTC),
	}
}

func TestMountSeedsFeedWithAckedSet(t *testing.T) {
	m := newTestModel(t)
	cmd := m.Mount(map[string]bool{"n1": true})
	require.NotNil(t, cmd)

	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    1,
		Items: []model.Notification{
			notif("n1", 3, false),
			notif("n2", 2, false),
		},
	})

	// n1 was acknowledged in a previous session; only n2 counts.
	assert.Equal(t, 1, m.UnreadCount())
}

func TestApplyPushBumpsUnreadBadge(t *testing.T) {
	m := newTestModel(t)
	m.Mount(nil)

	m.ApplyPush(notif("n1", 1, false), time.Now())
	m.ApplyPush(notif("n2", 2, false), time.Now())
	assert.Equal(t, 2, m.UnreadCount())

	// The same event delivered twice must not double-count.
	m.ApplyPush(notif("n2", 2, false), time.Now())
	assert.Equal(t, 2, m.UnreadCount())
	assert.Equal(t, 2, len(m.feed.Entries()))
}

func TestStalePageLoadIsDropped(t *testing.T) {
	m := newTestModel(t)
	m.Mount(nil)
	m.Unmount()
	m.Mount(nil)

	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    1,
		Items:   []model.Notification{notif("n1", 1, false)},
	})

	assert.Equal(t, 0, m.feed.Len())
}

func TestPageLoadErrorKeepsLastGoodState(t *testing.T) {
	m := newTestModel(t)
	m.Mount(nil)

	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    1,
		Items:   []model.Notification{notif("n1", 1, false)},
		HasMore: true,
	})
	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    2,
		Err:     fmt.Errorf("backend down"),
	})

	assert.Equal(t, 1, m.feed.Len())
	assert.True(t, m.feed.HasMore(), "a failed page must not end pagination")
}

func TestMarkSelectedReadIsOptimistic(t *testing.T) {
	m := newTestModel(t)
	m.Mount(nil)

	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    1,
		Items: []model.Notification{
			notif("n1", 2, false),
			notif("n2", 1, false),
		},
	})
	require.Equal(t, 2, m.UnreadCount())

	// Enter on the first (selected) row: read locally before any server
	// round trip completes.
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.UnreadCount())
	assert.NotNil(t, cmd)

	// Enter again on an already-read row fires nothing.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.UnreadCount())
}

func TestMarkAllReadClearsBadge(t *testing.T) {
	m := newTestModel(t)
	m.Mount(nil)

	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    1,
		Items: []model.Notification{
			notif("n1", 3, false),
			notif("n2", 2, true),
			notif("n3", 1, false),
		},
	})
	require.Equal(t, 2, m.UnreadCount())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}})
	assert.Equal(t, 0, m.UnreadCount())
	assert.NotNil(t, cmd)
}

func TestStickyReadAcrossHistoryReplay(t *testing.T) {
	m := newTestModel(t)
	m.Mount(nil)

	m.ApplyPush(notif("n1", 1, false), time.Now())
	m.feed.MarkRead("n1")
	require.Equal(t, 0, m.UnreadCount())

	// The history page still carries the stale unread copy.
	m, _ = m.Update(PageLoadedMsg{
		Session: 1,
		Page:    1,
		Items:   []model.Notification{notif("n1", 1, false)},
	})
	assert.Equal(t, 0, m.UnreadCount())
}
