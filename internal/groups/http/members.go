package http

import (
	"net/http"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/httpx"
)

type MembersHandler struct {
	MembershipService *service.MembershipService
}

// HandleLeave godoc
//
//	@Summary		Leave Group
//	@Description	Remove the caller from a group. An owner must hand over ownership first.
//	@Description	When the caller is the last member the group is deleted.
//	@Tags			Members
//	@Produce		json
//	@Param			id	path		string	true	"Group ID"
//	@Success		200	{object}	groupsdk.LeaveResponse
//	@Failure		404	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/leave [post]
func (h *MembersHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	res, err := h.MembershipService.Leave(r.Context(), groupID, p.UserID)
	if err != nil {
		writeError(w, r, "leave group", err)
		return
	}

	resp := groupsdk.LeaveResponse{Message: "left group"}
	if res.GroupDeleted {
		counts := toCounts(res.Deleted.Content)
		resp.Message = "left group; group deleted"
		resp.GroupDeleted = true
		resp.Deleted = &counts
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleKick godoc
//
//	@Summary		Kick Member
//	@Description	Remove another member. Owners cannot be kicked and targets must rank below the caller.
//	@Tags			Members
//	@Param			id		path	string	true	"Group ID"
//	@Param			userId	path	string	true	"Member user ID"
//	@Success		204
//	@Failure		400	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/members/{userId} [delete]
func (h *MembersHandler) HandleKick(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	if err := h.MembershipService.Kick(r.Context(), groupID, p.UserID, r.PathValue("userId")); err != nil {
		writeError(w, r, "kick member", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleChangeRole godoc
//
//	@Summary		Change Member Role
//	@Description	Set another member's role to owner, moderator or member.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Group ID"
//	@Param			userId	path		string						true	"Member user ID"
//	@Param			request	body		groupsdk.ChangeRoleRequest	true	"New role"
//	@Success		200		{object}	groupsdk.Member
//	@Failure		400		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/members/{userId}/role [put]
func (h *MembersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	var req groupsdk.ChangeRoleRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeError(w, r, "change role", err)
		return
	}

	m, err := h.MembershipService.ChangeRole(r.Context(), groupID, p.UserID, r.PathValue("userId"), req.Role)
	if err != nil {
		writeError(w, r, "change role", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMemberResponse(m))
}

// HandleUpdateSettings godoc
//
//	@Summary		Update My Member Settings
//	@Description	Pin the group or switch notification categories for the caller.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Group ID"
//	@Param			request	body		groupsdk.MemberSettingsRequest	true	"Settings"
//	@Success		200		{object}	groupsdk.Member
//	@Failure		400		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/members/me [patch]
func (h *MembersHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	var req groupsdk.MemberSettingsRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeError(w, r, "update member settings", err)
		return
	}

	settings := domain.MemberSettings{Pinned: req.IsPinned}
	if len(req.NotificationPreferences) > 0 {
		settings.Preferences = make(map[domain.Category]bool, len(req.NotificationPreferences))
		for c, on := range req.NotificationPreferences {
			settings.Preferences[domain.Category(c)] = on
		}
	}

	m, err := h.MembershipService.UpdateMemberSettings(r.Context(), groupID, p.UserID, settings)
	if err != nil {
		writeError(w, r, "update member settings", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMemberResponse(m))
}
