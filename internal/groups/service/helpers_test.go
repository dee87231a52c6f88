package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/internal/groups/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// recorder is an events.Emitter that keeps everything it is given.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Emit(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store      *sqlite.Store
	events     *recorder
	clock      *clock
	groups     *service.GroupService
	membership *service.MembershipService
	invites    *service.InviteService
	content    *service.ContentService
	activity   *service.ActivityService
	users      *service.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, ":memory:")
}

// newFileFixture runs against a WAL database on disk, so concurrent callers
// get separate connections.
func newFileFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, filepath.Join(t.TempDir(), "docket.db"))
}

func newFixtureAt(t *testing.T, path string) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	rec := &recorder{}
	clk := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	return &fixture{
		store:      st,
		events:     rec,
		clock:      clk,
		groups:     &service.GroupService{Store: st, Events: rec, Now: clk.Now},
		membership: &service.MembershipService{Store: st, Events: rec, Now: clk.Now},
		invites:    &service.InviteService{Store: st, Events: rec, Now: clk.Now, Policy: service.InviteByMembers},
		content:    &service.ContentService{Store: st, Events: rec, Now: clk.Now},
		activity:   &service.ActivityService{Store: st},
		users:      &service.UserService{Store: st, Now: clk.Now},
	}
}

// groupWith creates a group owned by owner and joins every other user
// through an invite.
func (f *fixture) groupWith(t *testing.T, owner string, members ...string) domain.Group {
	t.Helper()
	ctx := context.Background()

	g, err := f.groups.CreateGroup(ctx, owner, service.CreateGroupInput{Name: "Flat 4B"})
	require.NoError(t, err)

	for _, m := range members {
		inv, err := f.invites.GenerateInvite(ctx, g.ID, owner)
		require.NoError(t, err)
		_, err = f.invites.RedeemInvite(ctx, inv.Token, m)
		require.NoError(t, err)
	}

	g, err = f.groups.GetGroup(ctx, g.ID, owner)
	require.NoError(t, err)
	return g
}

// promote makes target a moderator, acting as owner.
func (f *fixture) promote(t *testing.T, groupID, owner, target string) {
	t.Helper()
	_, err := f.membership.ChangeRole(context.Background(), groupID, owner, target, "moderator")
	require.NoError(t, err)
}
