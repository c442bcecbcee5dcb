package api

import (
	"context"
	"fmt"

	"github.com/nhle/auction-console/internal/model"
)

// ListProfiles fetches one page of seller-profile applications, newest
// first.
//
// Unlike /notifications, this endpoint does not accept a page-size
// parameter: it returns a server-fixed page and the client applies its
// page size as a slicing convention. A documented inconsistency in the
// backend, mirrored here rather than papered over.
func (c *Client) ListProfiles(
	ctx context.Context,
	page int,
) (*FetchResult[model.ProfileRecord], error) {
	if page < 1 {
		page = 1
	}

	path := fmt.Sprintf("/profiles?page=%d", page)

	var resp profilesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing profiles page %d: %w", page, err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("listing profiles page %d: server reported failure", page)
	}

	items := resp.Profiles
	if len(items) > c.pageSize {
		items = items[:c.pageSize]
	}

	return &FetchResult[model.ProfileRecord]{
		Items:   items,
		HasMore: len(items) == c.pageSize,
	}, nil
}
