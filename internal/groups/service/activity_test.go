package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestActivityLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Deliver events into the activity log for real.
	d := events.NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second,
		&events.ActivitySink{Store: f.store})
	f.groups.Events, f.invites.Events, f.membership.Events = d, d, d

	g := f.groupWith(t, "owner", "mod", "member")
	f.promote(t, g.ID, "owner", "mod")
	d.Wait()

	t.Run("newest first with totals", func(t *testing.T) {
		page, err := f.activity.ListActivity(ctx, g.ID, "member", 1, 2)
		require.NoError(t, err)
		require.Equal(t, 1, page.Page)
		require.Equal(t, 2, page.Limit)
		require.Positive(t, page.Total)
		require.Equal(t, (page.Total+1)/2, page.Pages)
		require.Len(t, page.Entries, 2)
		require.Equal(t, domain.ActivityGroup, page.Entries[0].Category)
	})

	t.Run("limit is capped", func(t *testing.T) {
		page, err := f.activity.ListActivity(ctx, g.ID, "member", 0, 1000)
		require.NoError(t, err)
		require.Equal(t, 1, page.Page)
		require.Equal(t, domain.MaxActivityPageSize, page.Limit)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := f.activity.ListActivity(ctx, g.ID, "stranger", 1, 10)
		require.ErrorIs(t, err, service.ErrForbidden)
	})

	page, err := f.activity.ListActivity(ctx, g.ID, "owner", 1, 1)
	require.NoError(t, err)
	entry := page.Entries[0]

	t.Run("members cannot delete entries", func(t *testing.T) {
		require.ErrorIs(t, f.activity.DeleteActivity(ctx, entry.ID, "member"), service.ErrForbidden)
	})

	t.Run("moderator deletes entry", func(t *testing.T) {
		require.NoError(t, f.activity.DeleteActivity(ctx, entry.ID, "mod"))
		require.ErrorIs(t, f.activity.DeleteActivity(ctx, entry.ID, "mod"), service.ErrActivityNotFound)
	})
}

func TestHousekeeping(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.groupWith(t, "owner")

	live, err := f.invites.GenerateInvite(ctx, g.ID, "owner")
	require.NoError(t, err)

	now := f.clock.Now()
	require.NoError(t, f.store.Invites().CreateInvite(ctx, domain.Invite{
		ID: "expired", TokenHash: "h-expired", GroupID: g.ID, CreatedBy: "owner",
		ExpiresAt: now.Add(-time.Minute), MaxUses: 1, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.store.Invites().CreateInvite(ctx, domain.Invite{
		ID: "orphan", TokenHash: "h-orphan", GroupID: "deleted-group", CreatedBy: "owner",
		ExpiresAt: now.Add(time.Hour), MaxUses: 1, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.store.Activity().AppendActivity(ctx, domain.Activity{
		ID: "old", GroupID: g.ID, Category: domain.ActivityGroup, Message: "ancient",
		CreatedAt: now.Add(-60 * 24 * time.Hour),
	}))

	hk := service.NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, 0)
	hk.Now = f.clock.Now
	hk.Cleanup(ctx)

	_, err = f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(live.Token))
	require.NoError(t, err)
	_, err = f.store.Invites().GetInviteByTokenHash(ctx, "h-expired")
	require.Error(t, err)
	_, err = f.store.Invites().GetInviteByTokenHash(ctx, "h-orphan")
	require.Error(t, err)
	_, err = f.store.Activity().GetActivity(ctx, "old")
	require.Error(t, err)

	t.Run("start and stop", func(t *testing.T) {
		hk := service.NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, time.Hour)
		hk.Start()
		hk.Stop()
	})
}

func TestUserServiceObserve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.users.Observe(ctx, "u1", "alice")
	f.users.Observe(ctx, "u1", "")

	u, err := f.store.Users().GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
}
