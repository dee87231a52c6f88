package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/docket/pkg/jwtx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

// PrincipalHook is called after a bearer token has been verified. It lets the
// service record who it has seen; failures are the hook's to log.
type PrincipalHook func(ctx context.Context, p Principal)

// AuthnMiddleware requires a valid bearer token and attaches the caller to the
// request context and the request logger.
func AuthnMiddleware(v jwtx.Verifier, hooks ...PrincipalHook) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", slogx.Err(err))
				return
			}

			p := Principal{UserID: claims.Subject, Username: claims.Username}
			ctx = WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, "user_id", p.UserID)

			for _, hook := range hooks {
				hook(ctx, p)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, errorBody{
		Error:            "invalid_token",
		ErrorDescription: desc,
	})
}
