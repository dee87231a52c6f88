package groupsdk

import (
	"context"
	"net/http"
	"net/url"
)

func contentPath(groupID, kind string) string {
	return groupPath(groupID) + "/content/" + url.PathEscape(kind)
}

// CreateContent creates a list, item, note or poll in the group.
func (c *Client) CreateContent(ctx context.Context, groupID, kind string, req CreateContentRequest) (*Content, error) {
	var out Content
	if err := c.call(ctx, http.MethodPost, contentPath(groupID, kind), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveContent deletes a content record. Removing a list removes its items.
func (c *Client) RemoveContent(ctx context.Context, groupID, kind, contentID string) (*RemoveContentResponse, error) {
	var out RemoveContentResponse
	path := contentPath(groupID, kind) + "/" + url.PathEscape(contentID)
	if err := c.call(ctx, http.MethodDelete, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
