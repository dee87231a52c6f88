package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("creator becomes sole owner", func(t *testing.T) {
		g, err := f.groups.CreateGroup(ctx, "u1", service.CreateGroupInput{Name: "  Flat 4B  ", Description: "chores"})
		require.NoError(t, err)

		require.Equal(t, "Flat 4B", g.Name)
		require.Equal(t, domain.DefaultIcon, g.Icon)
		require.Equal(t, domain.DefaultColor, g.Color)
		require.Equal(t, "u1", g.AuthorID)
		require.Len(t, g.Members, 1)
		require.Equal(t, domain.RoleOwner, g.Members[0].Role)
		require.Equal(t, domain.CreatorPreferences(), g.Members[0].Preferences)
		require.Equal(t, events.GroupCreated, f.events.last().Type)
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := f.groups.CreateGroup(ctx, "u1", service.CreateGroupInput{Name: "   "})
		require.ErrorIs(t, err, service.ErrValidation)
		require.ErrorIs(t, err, domain.ErrNameRequired)
	})
}

func TestGetAndListGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.groupWith(t, "u1", "u2")
	f.groupWith(t, "u3")

	t.Run("member sees group", func(t *testing.T) {
		g, err := f.groups.GetGroup(ctx, a.ID, "u2")
		require.NoError(t, err)
		require.Len(t, g.Members, 2)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		_, err := f.groups.GetGroup(ctx, a.ID, "u3")
		require.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := f.groups.GetGroup(ctx, "nope", "u1")
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("list only my groups", func(t *testing.T) {
		groups, err := f.groups.ListGroups(ctx, "u2")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		require.Equal(t, a.ID, groups[0].ID)
	})
}

func TestUpdateGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.groupWith(t, "owner", "mod", "member")
	f.promote(t, g.ID, "owner", "mod")

	t.Run("owner updates supplied fields only", func(t *testing.T) {
		updated, err := f.groups.UpdateGroup(ctx, g.ID, "owner", domain.GroupPatch{Color: ptr("teal")})
		require.NoError(t, err)
		require.Equal(t, "teal", updated.Color)
		require.Equal(t, g.Name, updated.Name)

		got, err := f.groups.GetGroup(ctx, g.ID, "owner")
		require.NoError(t, err)
		require.Equal(t, "teal", got.Color)
	})

	for _, user := range []string{"mod", "member", "stranger"} {
		t.Run(user+" is forbidden", func(t *testing.T) {
			_, err := f.groups.UpdateGroup(ctx, g.ID, user, domain.GroupPatch{Name: ptr("Mine")})
			require.ErrorIs(t, err, service.ErrForbidden)
		})
	}

	t.Run("empty patch", func(t *testing.T) {
		_, err := f.groups.UpdateGroup(ctx, g.ID, "owner", domain.GroupPatch{})
		require.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := f.groups.UpdateGroup(ctx, "nope", "owner", domain.GroupPatch{Name: ptr("x")})
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestDeleteGroupCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.groupWith(t, "owner", "member")

	list, err := f.content.CreateContent(ctx, g.ID, "owner", "list", "Groceries", "")
	require.NoError(t, err)
	for _, title := range []string{"milk", "eggs"} {
		_, err := f.content.CreateContent(ctx, g.ID, "member", "item", title, list.ID)
		require.NoError(t, err)
	}
	_, err = f.content.CreateContent(ctx, g.ID, "member", "note", "Wifi password", "")
	require.NoError(t, err)
	_, err = f.content.CreateContent(ctx, g.ID, "owner", "poll", "Pizza night?", "")
	require.NoError(t, err)
	inv, err := f.invites.GenerateInvite(ctx, g.ID, "owner")
	require.NoError(t, err)

	t.Run("member cannot delete", func(t *testing.T) {
		_, err := f.groups.DeleteGroup(ctx, g.ID, "member")
		require.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("owner deletes everything", func(t *testing.T) {
		res, err := f.groups.DeleteGroup(ctx, g.ID, "owner")
		require.NoError(t, err)
		require.Equal(t, domain.ContentCounts{Lists: 1, Items: 2, Notes: 1, Polls: 1}, res.Content)
		require.Equal(t, 1, res.Invites)

		_, err = f.groups.GetGroup(ctx, g.ID, "owner")
		require.ErrorIs(t, err, service.ErrNotFound)

		_, err = f.invites.LookupInvite(ctx, inv.Token)
		require.ErrorIs(t, err, service.ErrNotFound)
		require.Equal(t, events.GroupDeleted, f.events.last().Type)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		_, err := f.groups.DeleteGroup(ctx, g.ID, "owner")
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

var errDiskFull = errors.New("disk full")

// groupRecordStuck fails the final group record delete while everything else
// reaches the wrapped store.
type groupRecordStuck struct{ store.Store }

func (s groupRecordStuck) Groups() store.Groups { return stuckGroups{s.Store.Groups()} }

type stuckGroups struct{ store.Groups }

func (stuckGroups) DeleteGroup(context.Context, string) error { return errDiskFull }

func TestDeleteGroupIncomplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.groupWith(t, "owner", "member")

	list, err := f.content.CreateContent(ctx, g.ID, "owner", "list", "Groceries", "")
	require.NoError(t, err)
	_, err = f.content.CreateContent(ctx, g.ID, "member", "item", "milk", list.ID)
	require.NoError(t, err)
	_, err = f.content.CreateContent(ctx, g.ID, "member", "note", "Bins on Tuesday", "")
	require.NoError(t, err)
	_, err = f.invites.GenerateInvite(ctx, g.ID, "owner")
	require.NoError(t, err)

	stuck := &service.GroupService{Store: groupRecordStuck{f.store}, Events: f.events, Now: f.clock.Now}
	res, err := stuck.DeleteGroup(ctx, g.ID, "owner")
	require.Error(t, err)
	require.ErrorIs(t, err, service.ErrInternal)
	require.ErrorIs(t, err, errDiskFull)

	var incomplete *service.ErrDeleteIncomplete
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, g.ID, incomplete.GroupID)
	require.Equal(t, domain.ContentCounts{Lists: 1, Items: 1, Notes: 1}, incomplete.Counts)
	require.Equal(t, incomplete.Counts, res.Content)
	require.Equal(t, 1, res.Invites)
	require.NotContains(t, f.events.types(), events.GroupDeleted)

	// The group and its roster survive, so the owner can finish the job.
	_, err = f.groups.GetGroup(ctx, g.ID, "owner")
	require.NoError(t, err)

	res, err = f.groups.DeleteGroup(ctx, g.ID, "owner")
	require.NoError(t, err)
	require.Zero(t, res.Content.Total())
	require.Zero(t, res.Invites)
	require.Equal(t, events.GroupDeleted, f.events.last().Type)

	_, err = f.groups.GetGroup(ctx, g.ID, "owner")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{service.ErrGroupNotFound, service.ErrNotFound},
		{service.ErrNotMember, service.ErrNotFound},
		{service.ErrPermissionDenied, service.ErrForbidden},
		{service.ErrOwnerNotKickable, service.ErrForbidden},
		{service.ErrOwnerMustTransfer, service.ErrConflict},
		{service.ErrSoleMemberMustDelete, service.ErrConflict},
		{service.ErrInviteGone, service.ErrGone},
		{service.ErrInvalidRole, service.ErrValidation},
		{&service.ErrDeleteIncomplete{Err: errors.New("disk full")}, service.ErrInternal},
		{errors.New("anything else"), service.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, service.KindOf(tt.err))
		})
	}

	require.NoError(t, service.KindOf(nil))
	require.ErrorIs(t, service.ErrNotMember, domain.ErrNotMember)
}
