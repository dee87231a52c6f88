package http

import (
	"net/http"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/httpx"
)

type GroupsHandler struct {
	GroupService *service.GroupService
}

// HandleCreate godoc
//
//	@Summary		Create Group
//	@Description	Create a group. The caller becomes its owner and only member.
//	@Tags			Groups
//	@Accept			json
//	@Produce		json
//	@Param			request	body		groupsdk.CreateGroupRequest	true	"Group details"
//	@Success		201		{object}	groupsdk.Group
//	@Failure		400		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups [post]
func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req groupsdk.CreateGroupRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeError(w, r, "create group", err)
		return
	}

	g, err := h.GroupService.CreateGroup(r.Context(), p.UserID, service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, r, "create group", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toGroupResponse(g))
}

// HandleList godoc
//
//	@Summary		List Groups
//	@Description	List the groups the caller belongs to, most recently updated first.
//	@Tags			Groups
//	@Produce		json
//	@Success		200	{object}	groupsdk.GroupListResponse
//	@Failure		401	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups [get]
func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groups, err := h.GroupService.ListGroups(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, "list groups", err)
		return
	}

	resp := groupsdk.GroupListResponse{Groups: make([]groupsdk.Group, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, toGroupResponse(g))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get Group
//	@Description	Get a group and its roster. Only members may view a group.
//	@Tags			Groups
//	@Produce		json
//	@Param			id	path		string	true	"Group ID"
//	@Success		200	{object}	groupsdk.Group
//	@Failure		401	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id} [get]
func (h *GroupsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	g, err := h.GroupService.GetGroup(r.Context(), groupID, p.UserID)
	if err != nil {
		writeError(w, r, "get group", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toGroupResponse(g))
}

// HandleUpdate godoc
//
//	@Summary		Update Group
//	@Description	Change a group's name, description, icon or color. Requires owner.
//	@Tags			Groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Group ID"
//	@Param			request	body		groupsdk.UpdateGroupRequest	true	"Fields to change"
//	@Success		200		{object}	groupsdk.Group
//	@Failure		400		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id} [patch]
func (h *GroupsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	var req groupsdk.UpdateGroupRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeError(w, r, "update group", err)
		return
	}

	g, err := h.GroupService.UpdateGroup(r.Context(), groupID, p.UserID, domain.GroupPatch{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, r, "update group", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toGroupResponse(g))
}

// HandleDelete godoc
//
//	@Summary		Delete Group
//	@Description	Delete a group with all its content, invites and activity. Requires owner.
//	@Tags			Groups
//	@Produce		json
//	@Param			id	path		string	true	"Group ID"
//	@Success		200	{object}	groupsdk.DeleteGroupResponse
//	@Failure		403	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	groupsdk.ErrorResponse	"error, error_description, deleted (delete_incomplete only)"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id} [delete]
func (h *GroupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	res, err := h.GroupService.DeleteGroup(r.Context(), groupID, p.UserID)
	if err != nil {
		writeError(w, r, "delete group", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toDeleteResponse(res))
}
