// Package feed implements the merge algorithm that keeps a live feed
// consistent across three sources of truth: paginated REST history,
// push events, and the local acknowledged-ID cache.
//
// A State is owned by a single view and mutated only from the UI event
// loop, so merges never interleave. It is not safe for concurrent use.
package feed

import "time"

// Item is anything that can live in a feed: it has a stable identity,
// a creation time for ordering, and a server-claimed read flag.
type Item interface {
	FeedID() string
	FeedCreatedAt() time.Time
	FeedRead() bool
}

// Entry wraps an item with feed-managed state.
type Entry[T Item] struct {
	Item T

	// Read is the effective read flag: the server value OR-ed with
	// local acknowledgement. Sticky: once true it never reverts, even
	// when a stale server payload claims unread.
	Read bool

	// TouchedAt is when a push event last changed this entry. Drives
	// the transient "just updated" highlight.
	TouchedAt time.Time
}

// State holds one merged, ordered, de-duplicated feed, newest first.
//
// The list is unbounded: moderation audiences are small. If that
// assumption ever breaks, truncate to the most recent ~200 entries
// after each merge.
type State[T Item] struct {
	entries []Entry[T]
	index   map[string]int
	acked   map[string]bool
	hasMore bool
	page    int
}

// New creates an empty feed seeded with the acknowledged-ID set from
// the read-state cache. Membership in acked forces an item read even
// when the server copy is stale.
func New[T Item](acked map[string]bool) *State[T] {
	if acked == nil {
		acked = make(map[string]bool)
	}
	return &State[T]{
		index:   make(map[string]int),
		acked:   acked,
		hasMore: true,
		page:    1,
	}
}

// Len returns the number of entries.
func (s *State[T]) Len() int { return len(s.entries) }

// Entries returns the merged list, newest first. The slice is shared
// with the feed; callers must not mutate it.
func (s *State[T]) Entries() []Entry[T] { return s.entries }

// Get returns the entry for id, if present.
func (s *State[T]) Get(id string) (Entry[T], bool) {
	if i, ok := s.index[id]; ok {
		return s.entries[i], true
	}
	var zero Entry[T]
	return zero, false
}

// Position returns the current list index of id, or -1.
func (s *State[T]) Position(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// MergePush folds a push-origin item into the feed and reports whether
// it was new.
//
// An existing id is updated in place: the payload is replaced wholesale
// and the read flag stays sticky. The entry moves to the front only
// when it is strictly newer than the current front, so repeated updates
// to an old record do not reorder the list under the viewer. A new id
// is inserted at the front: push events are assumed newest.
func (s *State[T]) MergePush(item T, now time.Time) bool {
	id := item.FeedID()
	if i, ok := s.index[id]; ok {
		e := &s.entries[i]
		e.Item = item
		e.Read = e.Read || item.FeedRead() || s.acked[id]
		e.TouchedAt = now
		if i > 0 && item.FeedCreatedAt().After(s.entries[0].Item.FeedCreatedAt()) {
			s.moveToFront(i)
		}
		return false
	}

	entry := Entry[T]{
		Item:      item,
		Read:      item.FeedRead() || s.acked[id],
		TouchedAt: now,
	}
	s.entries = append(s.entries, Entry[T]{})
	copy(s.entries[1:], s.entries)
	s.entries[0] = entry
	s.reindex()
	return true
}

// MergeHistory folds a history page into the feed. Pages arrive newest
// first and older than anything already seen, so unknown ids are
// appended at the end; known ids are updated in place with sticky read
// and keep their position and TouchedAt (a history replay is not an
// update worth highlighting).
func (s *State[T]) MergeHistory(items []T) {
	for _, item := range items {
		id := item.FeedID()
		if i, ok := s.index[id]; ok {
			e := &s.entries[i]
			e.Item = item
			e.Read = e.Read || item.FeedRead() || s.acked[id]
			continue
		}
		s.entries = append(s.entries, Entry[T]{
			Item: item,
			Read: item.FeedRead() || s.acked[id],
		})
		s.index[id] = len(s.entries) - 1
	}
}

// MarkRead flips one entry to read and records the acknowledgement
// locally so later merges cannot revert it. Reports whether the id was
// present.
func (s *State[T]) MarkRead(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.entries[i].Read = true
	s.acked[id] = true
	return true
}

// MarkAllRead flips every entry to read and returns the ids of all
// current entries, for persistence and the bulk server request.
func (s *State[T]) MarkAllRead() []string {
	ids := make([]string, 0, len(s.entries))
	for i := range s.entries {
		s.entries[i].Read = true
		id := s.entries[i].Item.FeedID()
		s.acked[id] = true
		ids = append(ids, id)
	}
	return ids
}

// UnreadCount recomputes the unread total by scanning the entries. It
// is derived state, never an independently maintained counter, so it
// cannot drift from the list.
func (s *State[T]) UnreadCount() int {
	n := 0
	for i := range s.entries {
		if !s.entries[i].Read {
			n++
		}
	}
	return n
}

// HasMore reports whether another history page may exist.
func (s *State[T]) HasMore() bool { return s.hasMore }

// SetHasMore records the loader's judgement about further pages.
func (s *State[T]) SetHasMore(v bool) { s.hasMore = v }

// NextPage returns the next history page number to request.
func (s *State[T]) NextPage() int { return s.page }

// AdvancePage moves the history cursor past a successfully merged page.
func (s *State[T]) AdvancePage() { s.page++ }

// moveToFront shifts the entry at index i to position 0, preserving
// the relative order of everything else.
func (s *State[T]) moveToFront(i int) {
	e := s.entries[i]
	copy(s.entries[1:i+1], s.entries[:i])
	s.entries[0] = e
	s.reindex()
}

// reindex rebuilds the id index after a structural change. O(n), fine
// at moderation scale.
func (s *State[T]) reindex() {
	for i := range s.entries {
		s.index[s.entries[i].Item.FeedID()] = i
	}
}
