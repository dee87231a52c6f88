package http

import (
	"net/http"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/httpx"
)

type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleGenerate godoc
//
//	@Summary		Generate Invite Link
//	@Description	Create an invite token for the group. The token is returned once and only its fingerprint is stored.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Group ID"
//	@Success		201	{object}	groupsdk.InviteResponse	"token, expires_at"
//	@Failure		403	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/invites [post]
func (h *InvitesHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	inv, err := h.InviteService.GenerateInvite(r.Context(), groupID, p.UserID)
	if err != nil {
		writeError(w, r, "generate invite", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, groupsdk.InviteResponse{
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
	})
}

// HandleLookup godoc
//
//	@Summary		Preview Invite Link
//	@Description	Show which group an invite leads to and whether it can still be used.
//	@Description	Expired and used up invites report their status with the group name and size only.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	query		string	true	"Invite token"
//	@Success		200		{object}	groupsdk.InviteLookupResponse
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invites/lookup [get]
func (h *InvitesHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	preview, err := h.InviteService.LookupInvite(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, r, "lookup invite", err)
		return
	}

	resp := groupsdk.InviteLookupResponse{
		Status: string(preview.Status),
		Group: groupsdk.InviteGroup{
			ID:          preview.Group.ID,
			Name:        preview.Group.Name,
			MemberCount: preview.Group.MemberCount,
		},
	}
	if preview.Status == domain.InviteActive {
		resp.Invitation = &groupsdk.InviteDetails{
			CreatedBy: preview.InviterName,
			ExpiresAt: preview.ExpiresAt,
			MaxUses:   preview.MaxUses,
			UsesCount: preview.UsesCount,
			Remaining: preview.Remaining,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRedeem godoc
//
//	@Summary		Redeem Invite Link
//	@Description	Join the invite's group as a member. Redeeming while already a member succeeds without using up the invite.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		groupsdk.RedeemRequest	true	"Invite token"
//	@Success		200		{object}	groupsdk.RedeemResponse
//	@Failure		400		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invites/redeem [post]
func (h *InvitesHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req groupsdk.RedeemRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeError(w, r, "redeem invite", err)
		return
	}

	res, err := h.InviteService.RedeemInvite(r.Context(), req.Token, p.UserID)
	if err != nil {
		writeError(w, r, "redeem invite", err)
		return
	}

	msg := "joined group"
	if res.AlreadyMember {
		msg = "already a member of this group"
	}
	httpx.WriteJSON(w, http.StatusOK, groupsdk.RedeemResponse{
		Message:       msg,
		AlreadyMember: res.AlreadyMember,
		Group:         toGroupResponse(res.Group),
	})
}
