package reviewtable

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

// profileItem wraps a feed entry so it can be used in a bubbles/list.
type profileItem struct {
	entry feed.Entry[model.ProfileRecord]
}

// FilterValue returns the string used for fuzzy filtering.
func (i profileItem) FilterValue() string {
	return i.entry.Item.SellerName
}

// rowDelegate renders one profile row. It shares the highlight set by
// reference with the Model so push updates are visible immediately.
type rowDelegate struct {
	highlights map[string]int
}

// Height returns the number of lines each row takes.
func (d rowDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between rows.
func (d rowDelegate) Spacing() int { return 0 }

// Update handles per-row messages (unused).
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single profile row: status badge, seller, kit, price,
// and submission time. Rows touched by a recent push get the
// just-updated style until their highlight timer fires.
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(profileItem)
	if !ok {
		return
	}

	p := pi.entry.Item
	isSelected := index == m.Index()
	_, isHighlighted := d.highlights[p.ID]

	statusBadge := theme.ProfileStatusStyle(p.Status).Render(p.Status)
	price := theme.DimmedStyle.Render(humanize.Comma(p.StartingPrice) + "₫")
	timeStr := theme.DimmedStyle.Render(humanize.Time(p.SubmittedAt))

	line := fmt.Sprintf(
		"%s %-20s %-24s %s  %s",
		statusBadge, p.SellerName, p.GundamName, price, timeStr,
	)

	switch {
	case isHighlighted:
		line = theme.UpdatedRowStyle.Render(line)
	case isSelected:
		line = theme.SelectedItemStyle.Render(line)
	default:
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
