package groups_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/stretchr/testify/require"
)

// TestInviteJoinFlow walks the main flow:
// 1. Alice creates a group
// 2. Alice generates an invite
// 3. Bob previews and redeems it
// 4. The used up invite is gone for Carol
// 5. Alice cannot leave while Bob is in the group; Bob can
func TestInviteJoinFlow(t *testing.T) {
	baseURL, cleanup := setupGroupsContainer(t)
	defer cleanup()

	ctx := t.Context()
	alice := clientFor(t, baseURL, "user-alice", "alice")
	bob := clientFor(t, baseURL, "user-bob", "bob")
	carol := clientFor(t, baseURL, "user-carol", "carol")

	group, err := alice.CreateGroup(ctx, groupsdk.CreateGroupRequest{Name: "Flat 4B"})
	require.NoError(t, err)

	invite, err := alice.GenerateInvite(ctx, group.ID)
	require.NoError(t, err)

	preview, err := groupsdk.NewClient(baseURL, "").LookupInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.Equal(t, "active", preview.Status)
	require.Equal(t, "alice", preview.Invitation.CreatedBy)

	joined, err := bob.RedeemInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.Len(t, joined.Group.Members, 2)

	_, err = carol.RedeemInvite(ctx, invite.Token)
	assertStatus(t, err, http.StatusGone)

	_, err = alice.Leave(ctx, group.ID)
	assertStatus(t, err, http.StatusConflict)

	res, err := bob.Leave(ctx, group.ID)
	require.NoError(t, err)
	require.False(t, res.GroupDeleted)

	g, err := alice.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, g.Members, 1)
	require.Equal(t, "owner", g.Members[0].Role)
}

// TestConcurrentRedeem verifies a single-use invite admits exactly one user
// when several redeem it at once.
func TestConcurrentRedeem(t *testing.T) {
	baseURL, cleanup := setupGroupsContainer(t)
	defer cleanup()

	ctx := t.Context()
	alice := clientFor(t, baseURL, "user-alice", "alice")

	group, err := alice.CreateGroup(ctx, groupsdk.CreateGroupRequest{Name: "Flat 4B"})
	require.NoError(t, err)
	invite, err := alice.GenerateInvite(ctx, group.ID)
	require.NoError(t, err)

	const n = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range n {
		c := clientFor(t, baseURL, fmt.Sprintf("user-%d", i), "")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.RedeemInvite(ctx, invite.Token); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)

	g, err := alice.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, g.Members, 2)
}
