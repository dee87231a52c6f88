package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/httpx"
	"github.com/aussiebroadwan/docket/pkg/idx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

// writeError maps a service or decode error onto its HTTP status. Internal
// failures are logged with their cause and reported without it.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, httpx.ErrBadRequest) {
		groupsdk.NewAPIError(http.StatusBadRequest, groupsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
		return
	}

	// A cascade that stopped part way is retryable; report what it removed.
	var incomplete *service.ErrDeleteIncomplete
	if errors.As(err, &incomplete) {
		slogx.FromContext(r.Context()).Error(op+" incomplete", slogx.Err(err))
		apiErr := groupsdk.NewAPIError(http.StatusInternalServerError, groupsdk.ErrorCodeDeleteIncomplete,
			"group deletion did not finish; retry the delete")
		counts := toCounts(incomplete.Counts)
		apiErr.Deleted = &counts
		apiErr.WriteError(w)
		return
	}

	var (
		status int
		code   string
	)
	switch service.KindOf(err) {
	case service.ErrNotFound:
		status, code = http.StatusNotFound, groupsdk.ErrorCodeNotFound
	case service.ErrForbidden:
		status, code = http.StatusForbidden, groupsdk.ErrorCodeForbidden
	case service.ErrConflict:
		status, code = http.StatusConflict, groupsdk.ErrorCodeConflict
	case service.ErrGone:
		status, code = http.StatusGone, groupsdk.ErrorCodeGone
	case service.ErrValidation:
		status, code = http.StatusBadRequest, groupsdk.ErrorCodeInvalidRequest
	default:
		slogx.FromContext(r.Context()).Error(op+" failed", slogx.Err(err))
		groupsdk.NewAPIError(http.StatusInternalServerError, groupsdk.ErrorCodeServerError, "internal error").WriteError(w)
		return
	}

	groupsdk.NewAPIError(status, code, err.Error()).WriteError(w)
}

// principal returns the authenticated caller. Routes that call it are always
// behind AuthnMiddleware.
func principal(w http.ResponseWriter, r *http.Request) (httpx.Principal, bool) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		groupsdk.NewAPIError(http.StatusUnauthorized, groupsdk.ErrorCodeInvalidToken, "authentication required").WriteError(w)
	}
	return p, ok
}

// pathID reads a ULID path value. A malformed one cannot name a stored
// record, so it is answered with notFound without a lookup.
func pathID(w http.ResponseWriter, r *http.Request, name string, notFound error) (string, bool) {
	id, err := idx.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, r, "parse "+name, notFound)
		return "", false
	}
	return id.String(), true
}
