package ack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/auction-console/internal/api"
	"github.com/nhle/auction-console/internal/readstate"
)

func TestMarkOnePersistsAndNotifiesServer(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	}))
	defer srv.Close()

	cache := readstate.NewMemoryStore()
	g := New(api.NewClient(srv.URL, "t", 20), cache, zerolog.Nop())

	msg := g.MarkOne("n1")()
	result, ok := msg.(ResultMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", result.ID)
	assert.NoError(t, result.Err)
	assert.Equal(t, "/notifications/n1/read", gotPath)

	acked, err := cache.Acknowledged(context.Background())
	require.NoError(t, err)
	assert.True(t, acked["n1"])
}

func TestMarkOneKeepsLocalStateWhenServerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := readstate.NewMemoryStore()
	g := New(api.NewClient(srv.URL, "t", 20), cache, zerolog.Nop())

	msg := g.MarkOne("n1")()
	result, ok := msg.(ResultMsg)
	require.True(t, ok)
	assert.Error(t, result.Err)

	// No rollback: the user saw the notification, so the cache keeps it
	// read even though the server write failed.
	acked, err := cache.Acknowledged(context.Background())
	require.NoError(t, err)
	assert.True(t, acked["n1"])
}

func TestMarkAllPersistsEveryIDAndFiresBulkRequest(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	}))
	defer srv.Close()

	cache := readstate.NewMemoryStore()
	g := New(api.NewClient(srv.URL, "t", 20), cache, zerolog.Nop())

	msg := g.MarkAll("42", []string{"n1", "n2", "n3"})()
	result, ok := msg.(ResultMsg)
	require.True(t, ok)
	assert.True(t, result.All)
	assert.NoError(t, result.Err)
	assert.Equal(t, "/notifications/user/42/read-all", gotPath)

	acked, err := cache.Acknowledged(context.Background())
	require.NoError(t, err)
	assert.Len(t, acked, 3)
}
