package groups_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/docket/pkg/groupsdk"
	"github.com/aussiebroadwan/docket/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for groups service end-to-end tests.
 * This includes container setup, token minting, and assertions.
 */

const (
	testImageName = "docket-groups-test:latest"

	jwtSecret = "e2e-shared-secret-0123456789abcdef"
	jwtIssuer = "docket-identity"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building Groups Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Groups Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/groups/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// relaxedRateLimits lifts every profile so flows are not throttled.
var relaxedRateLimits = map[string]string{
	"RATELIMIT_INVITE_REQUESTS": "1000",
	"RATELIMIT_INVITE_BURST":    "1000",
	"RATELIMIT_WRITE_REQUESTS":  "1000",
	"RATELIMIT_WRITE_BURST":     "1000",
}

// setupGroupsContainer starts the groups service with relaxed rate limits and
// returns the base URL.
func setupGroupsContainer(t *testing.T) (string, func()) {
	t.Helper()
	return startGroupsContainer(t, relaxedRateLimits)
}

// setupGroupsContainerWithDefaultRateLimits starts the groups service with
// production rate limits, for the tests that check throttling itself.
func setupGroupsContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startGroupsContainer(t, nil)
}

func startGroupsContainer(t *testing.T, extraEnv map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"JWT_SECRET":    jwtSecret,
		"JWT_ISSUER":    jwtIssuer,
		"DATABASE_FILE": "/data/groups.db",
		"ENV":           "test",
		"LOG_LEVEL":     "info",
		"LOG_FORMAT":    "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// clientFor returns a client authenticated as userID with a token signed the
// way the identity service signs them.
func clientFor(t *testing.T, baseURL, userID, username string) *groupsdk.Client {
	t.Helper()

	signer, err := jwtx.NewHS256([]byte(jwtSecret), jwtIssuer)
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewClaims(userID, username, jwtIssuer, time.Hour, time.Now()))
	require.NoError(t, err)

	return groupsdk.NewClient(baseURL, token)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *groupsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertStatus checks that err is an API error with the given HTTP status.
func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *groupsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected error: %s", apiErr.Description)
}
