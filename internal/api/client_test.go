package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/auction-console/internal/model"
)

func notif(i int) model.Notification {
	return model.Notification{
		ID:        fmt.Sprintf("n%d", i),
		Message:   fmt.Sprintf("bid received on lot %d", i),
		Channel:   "user.42",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
	}
}

func profile(i int) model.ProfileRecord {
	return model.ProfileRecord{
		ID:            fmt.Sprintf("p%d", i),
		SellerName:    fmt.Sprintf("seller-%d", i),
		GundamName:    "RX-78-2",
		StartingPrice: 1_500_000,
		Status:        model.ProfileStatusPending,
		SubmittedAt:   time.Date(2026, 3, 1, 11, 0, i, 0, time.UTC),
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"status": true, "notifications": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", 20)
	_, err := c.ListNotifications(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClientReturnsAuthErrorOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "expired", 20)
	_, err := c.ListNotifications(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsAuthError(err), "401 must surface as AuthError through the wrap chain")
}

func TestClientRetriesOn429(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": true, "notifications": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", 20)
	_, err := c.ListNotifications(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestListNotificationsHasMoreHeuristic(t *testing.T) {
	const pageSize = 3

	cases := []struct {
		name    string
		count   int
		hasMore bool
	}{
		{"full page", pageSize, true},
		{"short page", pageSize - 1, false},
		{"empty page", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, fmt.Sprintf("/notifications?page=1&page_size=%d", pageSize),
					r.URL.String())

				items := make([]model.Notification, tc.count)
				for i := range items {
					items[i] = notif(i)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"status":        true,
					"notifications": items,
				})
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "t", pageSize)
			result, err := c.ListNotifications(context.Background(), 1)
			require.NoError(t, err)
			assert.Len(t, result.Items, tc.count)
			assert.Equal(t, tc.hasMore, result.HasMore)
		})
	}
}

func TestListNotificationsServerFailureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": false})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", 20)
	_, err := c.ListNotifications(context.Background(), 1)
	assert.ErrorContains(t, err, "server reported failure")
}

func TestListProfilesSlicesToPageSize(t *testing.T) {
	// The profiles endpoint ignores page size, so the server may return
	// more rows than the client convention allows.
	const pageSize = 2

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles?page=1", r.URL.String())

		items := []model.ProfileRecord{profile(1), profile(2), profile(3)}
		json.NewEncoder(w).Encode(map[string]any{"status": true, "profiles": items})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", pageSize)
	result, err := c.ListProfiles(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Items, pageSize)
	assert.Equal(t, "p1", result.Items[0].ID)
	assert.True(t, result.HasMore)
}

func TestListProfilesShortPageEndsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":   true,
			"profiles": []model.ProfileRecord{profile(1)},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", 20)
	result, err := c.ListProfiles(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.False(t, result.HasMore)
}

func TestMarkNotificationRead(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", 20)
	require.NoError(t, c.MarkNotificationRead(context.Background(), "n7"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/notifications/n7/read", gotPath)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", 20)
	require.NoError(t, c.MarkAllNotificationsRead(context.Background(), "42"))
	assert.Equal(t, "/notifications/user/42/read-all", gotPath)
}
