package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testItem is a minimal feed item for exercising the merge algorithm.
type testItem struct {
	id        string
	createdAt time.Time
	read      bool
}

func (t testItem) FeedID() string           { return t.id }
func (t testItem) FeedCreatedAt() time.Time { return t.createdAt }
func (t testItem) FeedRead() bool           { return t.read }

func at(sec int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, sec, 0, time.UTC)
}

func ids[T Item](entries []Entry[T]) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Item.FeedID()
	}
	return out
}

func TestMergePushInsertsNewAtFront(t *testing.T) {
	s := New[testItem](nil)

	require.True(t, s.MergePush(testItem{id: "a", createdAt: at(1)}, at(1)))
	require.True(t, s.MergePush(testItem{id: "b", createdAt: at(2)}, at(2)))

	assert.Equal(t, []string{"b", "a"}, ids(s.Entries()))
	assert.Equal(t, 2, s.Len())
}

func TestMergePushDuplicateUpdatesInPlace(t *testing.T) {
	s := New[testItem](nil)
	s.MergePush(testItem{id: "a", createdAt: at(1)}, at(1))
	s.MergePush(testItem{id: "b", createdAt: at(2)}, at(2))

	// Same id again: no new entry, payload replaced, position kept
	// because the creation time did not move past the front.
	isNew := s.MergePush(testItem{id: "a", createdAt: at(1)}, at(5))
	assert.False(t, isNew)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, ids(s.Entries()))

	e, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, at(5), e.TouchedAt)
}

func TestMergePushNewerUpdateMovesToFront(t *testing.T) {
	s := New[testItem](nil)
	s.MergePush(testItem{id: "a", createdAt: at(1)}, at(1))
	s.MergePush(testItem{id: "b", createdAt: at(2)}, at(2))
	s.MergePush(testItem{id: "c", createdAt: at(3)}, at(3))

	s.MergePush(testItem{id: "a", createdAt: at(9)}, at(9))
	assert.Equal(t, []string{"a", "c", "b"}, ids(s.Entries()))

	// Relative order of the untouched entries is preserved.
	assert.Equal(t, 0, s.Position("a"))
	assert.Equal(t, 1, s.Position("c"))
	assert.Equal(t, 2, s.Position("b"))
}

func TestMergeHistoryAppendsUnknownAtEnd(t *testing.T) {
	s := New[testItem](nil)
	s.MergePush(testItem{id: "live", createdAt: at(9)}, at(9))

	s.MergeHistory([]testItem{
		{id: "h1", createdAt: at(3)},
		{id: "h2", createdAt: at(2)},
	})

	assert.Equal(t, []string{"live", "h1", "h2"}, ids(s.Entries()))
}

func TestMergeHistoryDuplicateKeepsPositionAndTouch(t *testing.T) {
	s := New[testItem](nil)
	s.MergePush(testItem{id: "a", createdAt: at(5)}, at(5))
	s.MergeHistory([]testItem{{id: "b", createdAt: at(4)}})

	// The push copy of "a" shows up again in a history page. One entry,
	// same position, and the replay does not count as a touch.
	s.MergeHistory([]testItem{{id: "a", createdAt: at(5)}})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, ids(s.Entries()))

	e, _ := s.Get("a")
	assert.Equal(t, at(5), e.TouchedAt)
}

func TestReadIsStickyAgainstStaleServerPayload(t *testing.T) {
	s := New[testItem](nil)
	s.MergePush(testItem{id: "a", createdAt: at(1)}, at(1))

	require.True(t, s.MarkRead("a"))
	e, _ := s.Get("a")
	require.True(t, e.Read)

	// Server replays the item still claiming unread; local wins.
	s.MergePush(testItem{id: "a", createdAt: at(1), read: false}, at(2))
	e, _ = s.Get("a")
	assert.True(t, e.Read)

	s.MergeHistory([]testItem{{id: "a", createdAt: at(1), read: false}})
	e, _ = s.Get("a")
	assert.True(t, e.Read)
}

func TestAckedSetForcesReadOnArrival(t *testing.T) {
	acked := map[string]bool{"old": true}
	s := New[testItem](acked)

	s.MergeHistory([]testItem{
		{id: "old", createdAt: at(1), read: false},
		{id: "new", createdAt: at(2), read: false},
	})

	e, _ := s.Get("old")
	assert.True(t, e.Read, "cached acknowledgement must override stale server copy")
	e, _ = s.Get("new")
	assert.False(t, e.Read)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestUnreadCountIsDerived(t *testing.T) {
	s := New[testItem](nil)
	s.MergeHistory([]testItem{
		{id: "a", createdAt: at(3)},
		{id: "b", createdAt: at(2), read: true},
		{id: "c", createdAt: at(1)},
	})
	assert.Equal(t, 2, s.UnreadCount())

	// Re-merging the same unread items changes nothing.
	s.MergeHistory([]testItem{{id: "a", createdAt: at(3)}})
	assert.Equal(t, 2, s.UnreadCount())

	s.MarkRead("a")
	assert.Equal(t, 1, s.UnreadCount())

	s.MarkRead("a")
	assert.Equal(t, 1, s.UnreadCount(), "marking twice must not double-count")
}

func TestMarkAllReadReturnsEveryID(t *testing.T) {
	s := New[testItem](nil)
	s.MergeHistory([]testItem{
		{id: "a", createdAt: at(3)},
		{id: "b", createdAt: at(2), read: true},
		{id: "c", createdAt: at(1)},
	})

	got := s.MarkAllRead()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, s.UnreadCount())
}

func TestMarkReadUnknownID(t *testing.T) {
	s := New[testItem](nil)
	assert.False(t, s.MarkRead("ghost"))
}

func TestPageCursor(t *testing.T) {
	s := New[testItem](nil)

	assert.True(t, s.HasMore())
	assert.Equal(t, 1, s.NextPage())

	s.AdvancePage()
	assert.Equal(t, 2, s.NextPage())

	s.SetHasMore(false)
	assert.False(t, s.HasMore())
}

func TestPushHistoryInterleaving(t *testing.T) {
	// A push arrives while the first history page is in flight, and the
	// page contains the same item. The result is one entry, newest
	// first, with no duplicate.
	s := New[testItem](nil)

	s.MergePush(testItem{id: "n5", createdAt: at(5)}, at(5))
	s.MergeHistory([]testItem{
		{id: "n5", createdAt: at(5)},
		{id: "n4", createdAt: at(4)},
		{id: "n3", createdAt: at(3)},
	})

	assert.Equal(t, []string{"n5", "n4", "n3"}, ids(s.Entries()))
	assert.Equal(t, 3, s.UnreadCount())
}
