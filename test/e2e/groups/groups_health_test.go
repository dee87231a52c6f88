package groups_test

import (
	"testing"

	"github.com/aussiebroadwan/docket/pkg/groupsdk"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupGroupsContainer(t)
	defer cleanup()

	health, err := groupsdk.NewClient(baseURL, "").GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

// TestReadyzEndpoint verifies the readiness check reports the database.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupGroupsContainer(t)
	defer cleanup()

	health, err := groupsdk.NewClient(baseURL, "").GetReadiness(t.Context())
	assertHealthy(t, health, err)
	if health.Checks == nil || health.Checks.Database != "ok" {
		t.Fatalf("database check not ok: %+v", health.Checks)
	}
}
