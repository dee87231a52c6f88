package groupsdk

import (
	"context"
	"net/http"
	"net/url"
)

func groupPath(groupID string) string {
	return "/v1/groups/" + url.PathEscape(groupID)
}

// CreateGroup creates a group owned by the caller.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	var group Group
	if err := c.call(ctx, http.MethodPost, "/v1/groups", req, &group, http.StatusCreated); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups returns every group the caller belongs to, most recently updated first.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var list GroupListResponse
	if err := c.call(ctx, http.MethodGet, "/v1/groups", nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list.Groups, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var group Group
	if err := c.call(ctx, http.MethodGet, groupPath(groupID), nil, &group, http.StatusOK); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup changes the group's details. Requires owner.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, req UpdateGroupRequest) (*Group, error) {
	var group Group
	if err := c.call(ctx, http.MethodPatch, groupPath(groupID), req, &group, http.StatusOK); err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup deletes the group and everything in it. Requires owner.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) (*DeleteGroupResponse, error) {
	var out DeleteGroupResponse
	if err := c.call(ctx, http.MethodDelete, groupPath(groupID), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Leave removes the caller from the group. The group is deleted when the
// caller was its last member.
func (c *Client) Leave(ctx context.Context, groupID string) (*LeaveResponse, error) {
	var out LeaveResponse
	if err := c.call(ctx, http.MethodPost, groupPath(groupID)+"/leave", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Kick removes another member.
func (c *Client) Kick(ctx context.Context, groupID, userID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, groupPath(groupID)+"/members/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ChangeRole sets another member's role and returns the updated member.
func (c *Client) ChangeRole(ctx context.Context, groupID, userID, role string) (*Member, error) {
	var member Member
	path := groupPath(groupID) + "/members/" + url.PathEscape(userID) + "/role"
	if err := c.call(ctx, http.MethodPut, path, ChangeRoleRequest{Role: role}, &member, http.StatusOK); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMemberSettings changes the caller's own pin and notification settings.
func (c *Client) UpdateMemberSettings(ctx context.Context, groupID string, req MemberSettingsRequest) (*Member, error) {
	var member Member
	if err := c.call(ctx, http.MethodPatch, groupPath(groupID)+"/members/me", req, &member, http.StatusOK); err != nil {
		return nil, err
	}
	return &member, nil
}
