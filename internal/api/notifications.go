package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/auction-console/internal/model"
)

// ListNotifications fetches one page of notification history, newest
// first. The notifications endpoint paginates server-side via query
// parameters.
func (c *Client) ListNotifications(
	ctx context.Context,
	page int,
) (*FetchResult[model.Notification], error) {
	if page < 1 {
		page = 1
	}

	path := fmt.Sprintf("/notifications?page=%d&page_size=%d", page, c.pageSize)

	var resp notificationsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing notifications page %d: %w", page, err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("listing notifications page %d: server reported failure", page)
	}

	return &FetchResult[model.Notification]{
		Items:   resp.Notifications,
		HasMore: len(resp.Notifications) == c.pageSize,
	}, nil
}

// MarkNotificationRead tells the server a single notification was read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := fmt.Sprintf("/notifications/%s/read", url.PathEscape(id))

	var resp statusResponse
	if err := c.put(ctx, path, nil, &resp); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	if !resp.Status {
		return fmt.Errorf("marking notification %s read: server reported failure", id)
	}
	return nil
}

// MarkAllNotificationsRead tells the server every notification for the
// given user was read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/notifications/user/%s/read-all", url.PathEscape(userID))

	var resp statusResponse
	if err := c.put(ctx, path, nil, &resp); err != nil {
		return fmt.Errorf("marking all notifications read for %s: %w", userID, err)
	}
	if !resp.Status {
		return fmt.Errorf("marking all notifications read for %s: server reported failure", userID)
	}
	return nil
}
