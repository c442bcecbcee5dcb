package notifpanel

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nhle/auction-console/internal/feed"
	"github.com/nhle/auction-console/internal/model"
	"github.com/nhle/auction-console/internal/theme"
)

// notifItem wraps a feed entry so it can be used in a bubbles/list.
type notifItem struct {
	entry feed.Entry[model.Notification]
}

// FilterValue returns the string used for fuzzy filtering.
func (i notifItem) FilterValue() string {
	return i.entry.Item.Message
}

// itemDelegate renders one notification row.
type itemDelegate struct{}

// Height returns the number of lines each item takes.
func (d itemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d itemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification line: read marker, message, and
// relative creation time.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notifItem)
	if !ok {
		return
	}

	n := ni.entry.Item
	isSelected := index == m.Index()

	marker := theme.DimmedStyle.Render("○")
	message := n.Message
	if !ni.entry.Read {
		marker = theme.UnreadStyle.Render("●")
		message = theme.UnreadStyle.Render(message)
	}

	timeStr := theme.DimmedStyle.Render(humanize.Time(n.CreatedAt))

	line := fmt.Sprintf("%s %s  %s", marker, message, timeStr)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
