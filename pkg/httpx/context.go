package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyUsername ctxKey = "username"
)

// Principal is the authenticated caller attached by AuthnMiddleware.
type Principal struct {
	UserID   string
	Username string
}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.UserID)
	ctx = context.WithValue(ctx, CtxKeyUsername, p.Username)
	return ctx
}

// PrincipalFrom returns the caller, or false when the request is anonymous.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	if !ok || id == "" {
		return Principal{}, false
	}
	name, _ := ctx.Value(CtxKeyUsername).(string)
	return Principal{UserID: id, Username: name}, true
}
