package groups_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitInviteLookup verifies the public lookup endpoint is throttled
// per IP (invite profile: 10 req/min) to slow down token guessing.
func TestRateLimitInviteLookup(t *testing.T) {
	baseURL, cleanup := setupGroupsContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := groupsdk.NewClient(baseURL, "")
	ctx := t.Context()

	for i := range 10 {
		_, err := client.LookupInvite(ctx, "guess")
		require.Error(t, err)
		require.NotContains(t, err.Error(), "rate_limit_exceeded", "should not be rate limited yet (request %d)", i+1)
	}

	_, err := client.LookupInvite(ctx, "guess")
	assertStatus(t, err, http.StatusTooManyRequests)
}
