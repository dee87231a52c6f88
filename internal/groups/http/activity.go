package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/httpx"
)

type ActivityHandler struct {
	ActivityService *service.ActivityService
}

// HandleList godoc
//
//	@Summary		List Group Activity
//	@Description	Page through the group's activity log, newest first. limit defaults to 20 and is capped at 100.
//	@Tags			Activity
//	@Produce		json
//	@Param			id		path		string	true	"Group ID"
//	@Param			page	query		int		false	"Page number, from 1"
//	@Param			limit	query		int		false	"Entries per page"
//	@Success		200		{object}	groupsdk.ActivityListResponse
//	@Failure		403		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/groups/{id}/activity [get]
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(w, r, "id", service.ErrGroupNotFound)
	if !ok {
		return
	}

	// Unparseable values fall back to the defaults.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	res, err := h.ActivityService.ListActivity(r.Context(), groupID, p.UserID, page, limit)
	if err != nil {
		writeError(w, r, "list activity", err)
		return
	}

	resp := groupsdk.ActivityListResponse{
		Activities: make([]groupsdk.Activity, 0, len(res.Entries)),
		Pagination: groupsdk.Pagination{
			Page:  res.Page,
			Limit: res.Limit,
			Total: res.Total,
			Pages: res.Pages,
		},
	}
	for _, a := range res.Entries {
		resp.Activities = append(resp.Activities, toActivityResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete godoc
//
//	@Summary		Delete Activity Entry
//	@Description	Remove one entry from a group's activity log. Requires moderator.
//	@Tags			Activity
//	@Param			id	path	string	true	"Activity ID"
//	@Success		204
//	@Failure		403	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	groupsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/activity/{id} [delete]
func (h *ActivityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	activityID, ok := pathID(w, r, "id", service.ErrActivityNotFound)
	if !ok {
		return
	}

	if err := h.ActivityService.DeleteActivity(r.Context(), activityID, p.UserID); err != nil {
		writeError(w, r, "delete activity", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
