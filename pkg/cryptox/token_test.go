package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		token, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		token2, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, token, token2, "tokens should be unique")
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("session-1")
	fp1b := FingerprintToken("session-1")
	fp2 := FingerprintToken("session-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2)
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}
