package directory_test

import (
	"testing"

	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitSignIn verifies sign-in uses the strict profile (5 req/min).
func TestRateLimitSignIn(t *testing.T) {
	baseURL, cleanup := setupDirectoryContainer(t, nil)
	defer cleanup()

	client := directorysdk.NewClient(baseURL)

	for i := range 5 {
		_, err := client.SignIn(t.Context(), alexEmail, "wrong-password")
		require.True(t, directorysdk.IsKind(err, directorysdk.ErrorCodeInvalidCredentials),
			"request %d should fail on credentials, got: %v", i+1, err)
	}

	_, err := client.SignIn(t.Context(), alexEmail, demoPassword)
	assertKind(t, err, directorysdk.ErrorCodeRateLimitExceeded)
}
