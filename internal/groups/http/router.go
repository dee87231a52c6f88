package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/pkg/httpx"
	"github.com/aussiebroadwan/docket/pkg/jwtx"
	"github.com/aussiebroadwan/docket/pkg/slogx"

	_ "github.com/aussiebroadwan/docket/api/groups" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger is a dependency readyz can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	GroupService      *service.GroupService
	MembershipService *service.MembershipService
	InviteService     *service.InviteService
	ActivityService   *service.ActivityService
	ContentService    *service.ContentService
	UserService       *service.UserService
	Events            Pinger // Optional: only set when the Redis event stream is configured
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerGroups()
	r.registerMembers()
	r.registerInvites()
	r.registerActivity()
	r.registerContent()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/",
		httpx.Chain(httpSwagger.Handler(),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Docket Groups Service API
//	@version					0.1.0
//	@description				Groups, membership, roles and invite links for Docket.
//	@description
//	@description				Every group has at least one owner. Roles rank owner > moderator > member.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/docket
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h with bearer authentication and a per-user rate limit.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	var hooks []httpx.PrincipalHook
	if r.UserService != nil {
		hooks = append(hooks, func(ctx context.Context, p httpx.Principal) {
			r.UserService.Observe(ctx, p.UserID, p.Username)
		})
	}
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier, hooks...),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}

	r.Mux.Handle("POST /v1/groups", r.authed(h.HandleCreate, httpx.WriteLimit))
	r.Mux.Handle("GET /v1/groups", r.authed(h.HandleList, httpx.ReadLimit))
	r.Mux.Handle("GET /v1/groups/{id}", r.authed(h.HandleGet, httpx.ReadLimit))
	r.Mux.Handle("PATCH /v1/groups/{id}", r.authed(h.HandleUpdate, httpx.WriteLimit))
	r.Mux.Handle("DELETE /v1/groups/{id}", r.authed(h.HandleDelete, httpx.WriteLimit))
}

func (r *Router) registerMembers() {
	h := &MembersHandler{MembershipService: r.MembershipService}

	r.Mux.Handle("POST /v1/groups/{id}/leave", r.authed(h.HandleLeave, httpx.WriteLimit))
	r.Mux.Handle("PATCH /v1/groups/{id}/members/me", r.authed(h.HandleUpdateSettings, httpx.WriteLimit))
	r.Mux.Handle("DELETE /v1/groups/{id}/members/{userId}", r.authed(h.HandleKick, httpx.WriteLimit))
	r.Mux.Handle("PUT /v1/groups/{id}/members/{userId}/role", r.authed(h.HandleChangeRole, httpx.WriteLimit))
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/groups/{id}/invites", r.authed(h.HandleGenerate, httpx.WriteLimit))

	// Lookup is public and keyed by IP; redemption is keyed by user. Both use
	// the strict invite profile to slow down token guessing.
	r.Mux.Handle("GET /v1/invites/lookup",
		httpx.Chain(http.HandlerFunc(h.HandleLookup),
			httpx.RateLimitByIP(httpx.InviteLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/redeem", r.authed(h.HandleRedeem, httpx.InviteLimit))
}

func (r *Router) registerActivity() {
	h := &ActivityHandler{ActivityService: r.ActivityService}

	r.Mux.Handle("GET /v1/groups/{id}/activity", r.authed(h.HandleList, httpx.ReadLimit))
	r.Mux.Handle("DELETE /v1/activity/{id}", r.authed(h.HandleDelete, httpx.WriteLimit))
}

func (r *Router) registerContent() {
	h := &ContentHandler{ContentService: r.ContentService}

	r.Mux.Handle("POST /v1/groups/{id}/content/{kind}", r.authed(h.HandleCreate, httpx.WriteLimit))
	r.Mux.Handle("DELETE /v1/groups/{id}/content/{kind}/{contentId}", r.authed(h.HandleRemove, httpx.WriteLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Events),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
}
