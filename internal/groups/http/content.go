package http

import (
	"net/http"

	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/httpx"
)

type ContentHandler struct {
	ContentService *service.ContentService
}

// HandleCreate godoc
//
//	@Summary		Create Content
//	@Description	Create a list, item, note or poll. Items name their list in parent_id.
//	@Tags			Content
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Group ID"
//	@Param			kind	path		string							true	"list, item, note or poll"
//	@Param			request	body		groupsdk.CreateContentRequest	true	"Content"
//	@Success		201		{object}	groupsdk.Content
//	@Failure		400		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/content/{kind} [post]
func (h *ContentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	var req groupsdk.CreateContentRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeError(w, r, "create content", err)
		return
	}

	c, err := h.ContentService.CreateContent(r.Context(), groupID, p.UserID, r.PathValue("kind"), req.Title, req.ParentID)
	if err != nil {
		writeError(w, r, "create content", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toContentResponse(c))
}

// HandleRemove godoc
//
//	@Summary		Remove Content
//	@Description	Delete a content record. Authors may remove their own; moderators and owners may remove anyone's.
//	@Description	Removing a list also removes its items.
//	@Tags			Content
//	@Produce		json
//	@Param			id			path		string	true	"Group ID"
//	@Param			kind		path		string	true	"list, item, note or poll"
//	@Param			contentId	path		string	true	"Content ID"
//	@Success		200			{object}	groupsdk.RemoveContentResponse
//	@Failure		403			{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404			{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/content/{kind}/{contentId} [delete]
func (h *ContentHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	contentID, ok := pathID(w, r, "contentId", service.ErrContentNotFound)
	if !ok {
		return
	}

	counts, err := h.ContentService.RemoveContent(r.Context(), groupID, p.UserID, r.PathValue("kind"), contentID)
	if err != nil {
		writeError(w, r, "remove content", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, groupsdk.RemoveContentResponse{Deleted: toCounts(counts)})
}
