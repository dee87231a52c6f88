package groupsdk

import (
	"context"
	"net/http"
	"net/url"
)

// GenerateInvite creates an invite link token for the group.
func (c *Client) GenerateInvite(ctx context.Context, groupID string) (*InviteResponse, error) {
	var out InviteResponse
	if err := c.call(ctx, http.MethodPost, groupPath(groupID)+"/invites", nil, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupInvite previews an invite. It does not need a token on the client.
func (c *Client) LookupInvite(ctx context.Context, token string) (*InviteLookupResponse, error) {
	var out InviteLookupResponse
	path := "/v1/invites/lookup?token=" + url.QueryEscape(token)
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemInvite joins the caller to the invite's group. Redeeming an invite to
// a group the caller is already in succeeds with AlreadyMember set.
func (c *Client) RedeemInvite(ctx context.Context, token string) (*RedeemResponse, error) {
	var out RedeemResponse
	if err := c.call(ctx, http.MethodPost, "/v1/invites/redeem", RedeemRequest{Token: token}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
