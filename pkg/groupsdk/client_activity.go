package groupsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListActivity returns one page of the group's activity log, newest first.
// Zero page or limit uses the server defaults.
func (c *Client) ListActivity(ctx context.Context, groupID string, page, limit int) (*ActivityListResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	path := groupPath(groupID) + "/activity"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ActivityListResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteActivity removes one activity entry. Requires moderator in the
// entry's group.
func (c *Client) DeleteActivity(ctx context.Context, activityID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/activity/"+url.PathEscape(activityID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
