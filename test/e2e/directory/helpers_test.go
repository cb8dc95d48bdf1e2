package directory_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helpers for the directory service end-to-end tests.
 * The service image is built once and every test starts its own container.
 */

const (
	testImageName = "directory-test:latest"

	jwtSecret    = "e2e-secret-0123456789abcdef0123456789"
	demoPassword = "Welcome123!"

	adminEmail = "admin@example.com"
	ownerEmail = "owner@example.com"
	alexEmail  = "alex@example.com"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards. Without a Docker daemon the suite is skipped.
func TestMain(m *testing.M) {
	if err := exec.Command("docker", "info").Run(); err != nil {
		fmt.Fprintf(os.Stdout, "docker unavailable, skipping directory e2e tests\n")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building Directory Service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Directory Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/directory/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// relaxedLimits lifts the strict and moderate profiles so tests that make
// many rapid requests are not throttled.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupDirectoryContainer starts the service with seeded sample data and
// returns its base URL. extra is merged over the base environment.
func setupDirectoryContainer(t *testing.T, extra map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"ENV":                     "test",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "json",
		"DIRECTORY_DATABASE_FILE": "/data/directory.db",
		"DIRECTORY_JWT_SECRET":    jwtSecret,
		"DIRECTORY_SEED":          "true",
	}
	for k, v := range extra {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
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

// signIn signs a seeded account in with the demo password.
func signIn(t *testing.T, client *directorysdk.Client, email string) *directorysdk.Session {
	t.Helper()
	sess, err := client.SignIn(t.Context(), email, demoPassword)
	require.NoError(t, err, "sign in as %s", email)
	require.NotEmpty(t, sess.Token())
	return sess
}

// assertKind verifies err is an API error with the given code.
func assertKind(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, directorysdk.IsKind(err, code), "expected %s, got: %v", code, err)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *directorysdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
