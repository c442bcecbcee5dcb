// Package ack sends mark-read intents to the server and keeps the
// local acknowledged-ID cache in step.
//
// The update policy is deliberately optimistic without rollback: the
// user genuinely saw the item, so local state stays "read" even when
// the server write fails. The failure is logged, not surfaced — a
// background sync hiccup is not worth alarming an operator over.
package ack

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/auction-console/internal/api"
	"github.com/nhle/auction-console/internal/readstate"
)

// requestTimeout bounds a single acknowledgement request.
const requestTimeout = 10 * time.Second

// ResultMsg reports the outcome of an acknowledgement request. Err is
// informational only; the optimistic local change stands either way.
type ResultMsg struct {
	ID  string
	All bool
	Err error
}

// Gateway fires acknowledgement requests. Commands run as independent
// goroutines under Bubble Tea, so concurrent MarkOne calls for
// different ids never serialize on each other.
type Gateway struct {
	client *api.Client
	cache  readstate.Store
	log    zerolog.Logger
}

// New creates a Gateway.
func New(client *api.Client, cache readstate.Store, log zerolog.Logger) *Gateway {
	return &Gateway{client: client, cache: cache, log: log}
}

// MarkOne persists id into the read-state cache and tells the server it
// was read. The cache write happens regardless of the request outcome:
// the cache is the source of truth for "did the user see this".
func (g *Gateway) MarkOne(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := g.cache.Add(ctx, id); err != nil {
			g.log.Warn().Err(err).Str("id", id).
				Msg("persisting acknowledgement failed")
		}

		if err := g.client.MarkNotificationRead(ctx, id); err != nil {
			// No rollback: see the package comment.
			g.log.Warn().Err(err).Str("id", id).
				Msg("mark-read request failed")
			return ResultMsg{ID: id, Err: err}
		}

		return ResultMsg{ID: id}
	}
}

// MarkAll persists every id into the cache and fires one bulk read-all
// request for the user. Same no-rollback policy as MarkOne.
func (g *Gateway) MarkAll(userID string, ids []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := g.cache.Add(ctx, ids...); err != nil {
			g.log.Warn().Err(err).Int("count", len(ids)).
				Msg("persisting acknowledgements failed")
		}

		if err := g.client.MarkAllNotificationsRead(ctx, userID); err != nil {
			g.log.Warn().Err(err).Str("user_id", userID).
				Msg("mark-all-read request failed")
			return ResultMsg{All: true, Err: err}
		}

		return ResultMsg{All: true}
	}
}
