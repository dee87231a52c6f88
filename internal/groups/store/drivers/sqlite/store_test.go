package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/internal/groups/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	return openStore(t, ":memory:")
}

// newFileStore opens a WAL database on disk, the way the service runs.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()
	return openStore(t, filepath.Join(t.TempDir(), "docket.db"))
}

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedGroup(t *testing.T, st store.Store, id, owner string, members ...string) domain.Group {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	g := domain.NewGroup(id, "Group "+id, "", "", "", owner, now)
	require.NoError(t, st.Groups().CreateGroup(ctx, g))
	for _, m := range members {
		require.NoError(t, st.Members().AddMember(ctx, id, domain.NewMember(m, now)))
	}

	g, err := st.Groups().GetGroup(ctx, id)
	require.NoError(t, err)
	return g
}

func TestGroupsRoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users().UpsertUser(ctx, domain.User{ID: "u1", Username: "alice", UpdatedAt: time.Now()}))
	g := seedGroup(t, st, "g1", "u1", "u2", "u3")

	require.Equal(t, "Group g1", g.Name)
	require.Equal(t, domain.DefaultIcon, g.Icon)
	require.Len(t, g.Members, 3)
	require.Equal(t, []string{"u1", "u2", "u3"}, []string{g.Members[0].UserID, g.Members[1].UserID, g.Members[2].UserID})
	require.Equal(t, domain.RoleOwner, g.Members[0].Role)
	require.Equal(t, "alice", g.Members[0].Username)
	require.Equal(t, domain.CreatorPreferences(), g.Members[0].Preferences)
	require.Equal(t, domain.DefaultPreferences(), g.Members[1].Preferences)

	t.Run("update metadata", func(t *testing.T) {
		g.Name = "Renamed"
		g.UpdatedAt = time.Now().UTC()
		require.NoError(t, st.Groups().UpdateGroup(ctx, g))

		got, err := st.Groups().GetGroup(ctx, "g1")
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.Name)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := st.Groups().GetGroup(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete removes roster", func(t *testing.T) {
		require.NoError(t, st.Groups().DeleteGroup(ctx, "g1"))
		n, err := st.Members().CountMembers(ctx, "g1")
		require.NoError(t, err)
		require.Zero(t, n)
		require.ErrorIs(t, st.Groups().DeleteGroup(ctx, "g1"), store.ErrNotFound)
	})
}

func TestListGroupsForUser(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	seedGroup(t, st, "g1", "u1", "u2")
	seedGroup(t, st, "g2", "u2")
	seedGroup(t, st, "g3", "u3")

	groups, err := st.Groups().ListGroupsForUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		require.True(t, g.Members.Contains("u2"))
	}

	groups, err = st.Groups().ListGroupsForUser(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestAddMember(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seedGroup(t, st, "g1", "u1")

	require.ErrorIs(t, st.Members().AddMember(ctx, "g1", domain.NewMember("u1", time.Now())), store.ErrAlreadyExists)
	require.ErrorIs(t, st.Members().AddMember(ctx, "missing", domain.NewMember("u2", time.Now())), store.ErrNotFound)
}

func TestGuardedMemberWrites(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seedGroup(t, st, "g1", "owner", "mod", "member")
	require.NoError(t, st.Members().SetRole(ctx, "g1", "mod", domain.RoleModerator,
		store.Guard{TargetRole: domain.RoleMember}))

	t.Run("stale target role", func(t *testing.T) {
		err := st.Members().SetRole(ctx, "g1", "member", domain.RoleModerator,
			store.Guard{TargetRole: domain.RoleModerator, ActorID: "owner", ActorRole: domain.RoleOwner})
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("stale actor role", func(t *testing.T) {
		err := st.Members().RemoveMember(ctx, "g1", "member",
			store.Guard{TargetRole: domain.RoleMember, ActorID: "mod", ActorRole: domain.RoleOwner})
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("guard holds", func(t *testing.T) {
		err := st.Members().RemoveMember(ctx, "g1", "member",
			store.Guard{TargetRole: domain.RoleMember, ActorID: "mod", ActorRole: domain.RoleModerator})
		require.NoError(t, err)

		n, err := st.Members().CountMembers(ctx, "g1")
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("settings", func(t *testing.T) {
		g, err := st.Groups().GetGroup(ctx, "g1")
		require.NoError(t, err)
		m, _ := g.Members.Find("mod")
		m.Pinned = true
		m.Preferences.Mention = true
		require.NoError(t, st.Members().UpdateSettings(ctx, "g1", m))

		g, err = st.Groups().GetGroup(ctx, "g1")
		require.NoError(t, err)
		m, _ = g.Members.Find("mod")
		require.True(t, m.Pinned)
		require.True(t, m.Preferences.Mention)
		require.Equal(t, domain.RoleModerator, m.Role)
	})
}

func newInvite(id, group string, maxUses int, expiresAt time.Time) domain.Invite {
	now := time.Now().UTC()
	return domain.Invite{
		ID:        id,
		TokenHash: "hash-" + id,
		GroupID:   group,
		CreatedBy: "u1",
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestConsumeInvite(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("single", "g1", 1, now.Add(time.Hour))))
	require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("expired", "g1", 5, now.Add(-time.Minute))))
	require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("open", "g1", domain.UnlimitedUses, now.Add(time.Hour))))

	t.Run("single use", func(t *testing.T) {
		inv, err := st.Invites().ConsumeInvite(ctx, "hash-single", now)
		require.NoError(t, err)
		require.Equal(t, 1, inv.UsesCount)
		require.True(t, inv.Exhausted())

		_, err = st.Invites().ConsumeInvite(ctx, "hash-single", now)
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := st.Invites().ConsumeInvite(ctx, "hash-expired", now)
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("unlimited", func(t *testing.T) {
		for i := range 3 {
			inv, err := st.Invites().ConsumeInvite(ctx, "hash-open", now)
			require.NoError(t, err)
			require.Equal(t, i+1, inv.UsesCount)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := st.Invites().ConsumeInvite(ctx, "hash-nope", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestConsumeInviteConcurrently(t *testing.T) {
	tests := []struct {
		name    string
		open    func(*testing.T) *sqlite.Store
		maxUses int
	}{
		{"memory single use", newStore, 1},
		{"file single use", newFileStore, 1},
		{"file two uses", newFileStore, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.open(t)
			ctx := context.Background()
			now := time.Now().UTC()
			require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("race", "g1", tt.maxUses, now.Add(time.Hour))))

			const redeemers = 10
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				failures  []error
			)
			for range redeemers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := st.Invites().ConsumeInvite(ctx, "hash-race", time.Now().UTC())
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						successes++
						return
					}
					failures = append(failures, err)
				}()
			}
			wg.Wait()

			require.Equal(t, tt.maxUses, successes)
			for _, err := range failures {
				require.ErrorIs(t, err, store.ErrConflict)
			}
			inv, err := st.Invites().GetInviteByTokenHash(ctx, "hash-race")
			require.NoError(t, err)
			require.Equal(t, tt.maxUses, inv.UsesCount)
		})
	}
}

func TestInviteHousekeeping(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedGroup(t, st, "g1", "u1")

	require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("live", "g1", 1, now.Add(time.Hour))))
	require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("old", "g1", 1, now.Add(-time.Hour))))
	used := newInvite("used", "g1", 1, now.Add(time.Hour))
	used.UsesCount = 1
	require.NoError(t, st.Invites().CreateInvite(ctx, used))
	require.NoError(t, st.Invites().CreateInvite(ctx, newInvite("orphan", "gone", 1, now.Add(time.Hour))))

	n, err := st.Invites().DeleteUnusableInvites(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = st.Invites().DeleteOrphanedInvites(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = st.Invites().GetInviteByTokenHash(ctx, "hash-live")
	require.NoError(t, err)

	n, err = st.Invites().DeleteInvitesByGroup(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestContentCascade(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	create := func(id string, kind domain.ContentKind, parent string) {
		require.NoError(t, st.Content().CreateContent(ctx, domain.Content{
			ID: id, GroupID: "g1", Kind: kind, ParentID: parent, AuthorID: "u1", Title: id, CreatedAt: now,
		}))
	}
	create("l1", domain.ContentList, "")
	create("l2", domain.ContentList, "")
	create("i1", domain.ContentItem, "l1")
	create("i2", domain.ContentItem, "l1")
	create("i3", domain.ContentItem, "l2")
	create("n1", domain.ContentNote, "")
	create("p1", domain.ContentPoll, "")

	counts, err := st.Content().DeleteContent(ctx, domain.ContentList, "l1")
	require.NoError(t, err)
	require.Equal(t, domain.ContentCounts{Lists: 1, Items: 2}, counts)

	_, err = st.Content().GetContent(ctx, domain.ContentItem, "i1")
	require.ErrorIs(t, err, store.ErrNotFound)

	counts, err = st.Content().DeleteGroupContent(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, domain.ContentCounts{Lists: 1, Items: 1, Notes: 1, Polls: 1}, counts)

	// Retrying the cascade is harmless.
	counts, err = st.Content().DeleteGroupContent(ctx, "g1")
	require.NoError(t, err)
	require.Zero(t, counts.Total())
}

func TestActivityPaging(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := range 25 {
		require.NoError(t, st.Activity().AppendActivity(ctx, domain.Activity{
			ID:        fmt.Sprintf("a%02d", i),
			GroupID:   "g1",
			Category:  domain.ActivityGroup,
			Message:   fmt.Sprintf("event %d", i),
			AuthorID:  "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, total, err := st.Activity().ListActivity(ctx, "g1", domain.NormalizePage(1, 10))
	require.NoError(t, err)
	require.Equal(t, 25, total)
	require.Len(t, page, 10)
	require.Equal(t, "a24", page[0].ID)

	page, _, err = st.Activity().ListActivity(ctx, "g1", domain.NormalizePage(3, 10))
	require.NoError(t, err)
	require.Len(t, page, 5)
	require.Equal(t, "a00", page[4].ID)

	n, err := st.Activity().DeleteActivityBefore(ctx, base.Add(10*time.Second))
	require.NoError(t, err)
	require.Equal(t, 10, n)

	require.NoError(t, st.Activity().DeleteActivity(ctx, "a24"))
	require.ErrorIs(t, st.Activity().DeleteActivity(ctx, "a24"), store.ErrNotFound)

	n, err = st.Activity().DeleteGroupActivity(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 14, n)
}

func TestWithTxRollsBack(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seedGroup(t, st, "g1", "u1")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Members().AddMember(ctx, "g1", domain.NewMember("u2", time.Now())))
		return store.ErrConflict
	})
	require.ErrorIs(t, err, store.ErrConflict)

	n, err := st.Members().CountMembers(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUsersUpsert(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users().UpsertUser(ctx, domain.User{ID: "u1", Username: "alice", UpdatedAt: time.Now()}))
	require.NoError(t, st.Users().UpsertUser(ctx, domain.User{ID: "u1", Username: "alicia", UpdatedAt: time.Now()}))

	u, err := st.Users().GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alicia", u.Username)

	_, err = st.Users().GetUser(ctx, "u2")
	require.ErrorIs(t, err, store.ErrNotFound)
}
