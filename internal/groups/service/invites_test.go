package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestParseInvitePolicy(t *testing.T) {
	p, err := service.ParseInvitePolicy("Moderators")
	require.NoError(t, err)
	require.Equal(t, service.InviteByModerators, p)

	p, err = service.ParseInvitePolicy("")
	require.NoError(t, err)
	require.Equal(t, service.InviteByMembers, p)

	_, err = service.ParseInvitePolicy("everyone")
	require.ErrorIs(t, err, service.ErrInvalidInvitePolicy)
}

func TestGenerateInvite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.groupWith(t, "owner", "member")

	t.Run("defaults", func(t *testing.T) {
		inv, err := f.invites.GenerateInvite(ctx, g.ID, "member")
		require.NoError(t, err)
		require.True(t, cryptox.WellFormedToken(inv.Token, service.InviteTokenSize))
		require.Equal(t, f.clock.Now().Add(domain.DefaultInviteTTL), inv.ExpiresAt)

		stored, err := f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(inv.Token))
		require.NoError(t, err)
		require.Equal(t, 1, stored.MaxUses)
		require.Zero(t, stored.UsesCount)
		require.Equal(t, "member", stored.CreatedBy)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := f.invites.GenerateInvite(ctx, g.ID, "stranger")
		require.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := f.invites.GenerateInvite(ctx, "nope", "owner")
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("moderator policy", func(t *testing.T) {
		strict := *f.invites
		strict.Policy = service.InviteByModerators

		_, err := strict.GenerateInvite(ctx, g.ID, "member")
		require.ErrorIs(t, err, service.ErrForbidden)

		_, err = strict.GenerateInvite(ctx, g.ID, "owner")
		require.NoError(t, err)
	})
}

func TestLookupInvite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Users().UpsertUser(ctx, domain.User{ID: "owner", Username: "olive", UpdatedAt: f.clock.Now()}))
	g := f.groupWith(t, "owner", "member")

	inv, err := f.invites.GenerateInvite(ctx, g.ID, "owner")
	require.NoError(t, err)

	t.Run("active", func(t *testing.T) {
		p, err := f.invites.LookupInvite(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InviteActive, p.Status)
		require.Equal(t, g.ID, p.Group.ID)
		require.Equal(t, 2, p.Group.MemberCount)
		require.Equal(t, "olive", p.InviterName)
		require.Equal(t, 1, p.MaxUses)
		require.Equal(t, 1, p.Remaining)
	})

	t.Run("unknown and malformed tokens", func(t *testing.T) {
		other, err := cryptox.GenerateToken(service.InviteTokenSize)
		require.NoError(t, err)
		for _, tok := range []string{other, "", "not-a-token"} {
			_, err := f.invites.LookupInvite(ctx, tok)
			require.ErrorIs(t, err, service.ErrInviteNotFound)
		}
	})

	t.Run("expired shows status only", func(t *testing.T) {
		f.clock.Advance(domain.DefaultInviteTTL)
		defer f.clock.Advance(-domain.DefaultInviteTTL)

		p, err := f.invites.LookupInvite(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InviteExpired, p.Status)
		require.Equal(t, g.Name, p.Group.Name)
		require.Empty(t, p.Group.ID)
		require.Empty(t, p.InviterName)
	})

	t.Run("lookup never mutates", func(t *testing.T) {
		stored, err := f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(inv.Token))
		require.NoError(t, err)
		require.Zero(t, stored.UsesCount)
	})
}

func TestRedeemInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("single use then gone", func(t *testing.T) {
		f := newFixture(t)
		g := f.groupWith(t, "u1")
		inv, err := f.invites.GenerateInvite(ctx, g.ID, "u1")
		require.NoError(t, err)

		res, err := f.invites.RedeemInvite(ctx, inv.Token, "u2")
		require.NoError(t, err)
		require.False(t, res.AlreadyMember)
		require.Len(t, res.Group.Members, 2)
		m, ok := res.Group.Members.Find("u2")
		require.True(t, ok)
		require.Equal(t, domain.RoleMember, m.Role)
		require.Equal(t, domain.DefaultPreferences(), m.Preferences)

		// Exhausted invites are deleted on the use that exhausts them.
		_, err = f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(inv.Token))
		require.Error(t, err)

		_, err = f.invites.RedeemInvite(ctx, inv.Token, "u3")
		require.ErrorIs(t, err, service.ErrGone)
	})

	t.Run("existing member does not use it up", func(t *testing.T) {
		f := newFixture(t)
		g := f.groupWith(t, "u1")
		inv, err := f.invites.GenerateInvite(ctx, g.ID, "u1")
		require.NoError(t, err)

		res, err := f.invites.RedeemInvite(ctx, inv.Token, "u1")
		require.NoError(t, err)
		require.True(t, res.AlreadyMember)

		stored, err := f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(inv.Token))
		require.NoError(t, err)
		require.Zero(t, stored.UsesCount)
	})

	t.Run("expired regardless of remaining uses", func(t *testing.T) {
		f := newFixture(t)
		f.invites.MaxUses = domain.UnlimitedUses
		g := f.groupWith(t, "u1")
		inv, err := f.invites.GenerateInvite(ctx, g.ID, "u1")
		require.NoError(t, err)

		f.clock.Advance(domain.DefaultInviteTTL + time.Second)
		_, err = f.invites.RedeemInvite(ctx, inv.Token, "u2")
		require.ErrorIs(t, err, service.ErrInviteGone)
	})

	t.Run("unlimited invite admits many", func(t *testing.T) {
		f := newFixture(t)
		f.invites.MaxUses = domain.UnlimitedUses
		g := f.groupWith(t, "u1")
		inv, err := f.invites.GenerateInvite(ctx, g.ID, "u1")
		require.NoError(t, err)

		for _, u := range []string{"u2", "u3", "u4"} {
			_, err := f.invites.RedeemInvite(ctx, inv.Token, u)
			require.NoError(t, err)
		}
		stored, err := f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(inv.Token))
		require.NoError(t, err)
		require.Equal(t, 3, stored.UsesCount)
	})

	t.Run("exhausted invite is removed on access", func(t *testing.T) {
		f := newFixture(t)
		now := f.clock.Now()
		require.NoError(t, f.store.Invites().CreateInvite(ctx, domain.Invite{
			ID:        "inv1",
			TokenHash: cryptox.FingerprintToken(validToken(t)),
			GroupID:   "g1",
			CreatedBy: "u1",
			ExpiresAt: now.Add(time.Hour),
			MaxUses:   2,
			UsesCount: 2,
			CreatedAt: now,
			UpdatedAt: now,
		}))
		_, err := f.invites.RedeemInvite(ctx, fixedToken, "u2")
		require.ErrorIs(t, err, service.ErrInviteUsedUp)

		_, err = f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(fixedToken))
		require.Error(t, err)
	})

	t.Run("deleted group removes invite", func(t *testing.T) {
		f := newFixture(t)
		g := f.groupWith(t, "u1")
		inv, err := f.invites.GenerateInvite(ctx, g.ID, "u1")
		require.NoError(t, err)
		require.NoError(t, f.store.Groups().DeleteGroup(ctx, g.ID))

		_, err = f.invites.RedeemInvite(ctx, inv.Token, "u2")
		require.ErrorIs(t, err, service.ErrInviteGroupGone)
		require.ErrorIs(t, err, service.ErrNotFound)

		_, err = f.store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(inv.Token))
		require.Error(t, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.invites.RedeemInvite(ctx, validToken(t), "u2")
		require.ErrorIs(t, err, service.ErrGone)
	})
}

// fixedToken is a well-formed token for fixtures that insert invites directly.
var fixedToken = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func validToken(t *testing.T) string {
	t.Helper()
	require.True(t, cryptox.WellFormedToken(fixedToken, service.InviteTokenSize))
	return fixedToken
}

func TestRedeemInviteConcurrently(t *testing.T) {
	tests := []struct {
		name    string
		fixture func(*testing.T) *fixture
		maxUses int
	}{
		{"memory single use", newFixture, 1},
		{"file single use", newFileFixture, 1},
		{"file two uses", newFileFixture, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := tt.fixture(t)
			f.invites.MaxUses = tt.maxUses
			g := f.groupWith(t, "u1")
			inv, err := f.invites.GenerateInvite(ctx, g.ID, "u1")
			require.NoError(t, err)

			redeemers := make([]string, 10)
			for i := range redeemers {
				redeemers[i] = fmt.Sprintf("racer-%d", i)
			}
			results := make([]error, len(redeemers))

			var wg sync.WaitGroup
			for i, u := range redeemers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, results[i] = f.invites.RedeemInvite(ctx, inv.Token, u)
				}()
			}
			wg.Wait()

			var ok int
			for _, err := range results {
				if err == nil {
					ok++
					continue
				}
				require.ErrorIs(t, err, service.ErrGone)
			}
			require.Equal(t, tt.maxUses, ok)

			got, err := f.groups.GetGroup(ctx, g.ID, "u1")
			require.NoError(t, err)
			require.Len(t, got.Members, 1+tt.maxUses)
		})
	}
}
