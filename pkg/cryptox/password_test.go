package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Format(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)

			saltHex, digest, ok := strings.Cut(hash, ":")
			require.True(t, ok, "credential should be salt:digest")
			require.Len(t, saltHex, 32, "16-byte salt hex encoded")
			require.Len(t, digest, 64, "sha256 digest hex encoded")

			// The digest is computed over password + salt hex.
			sum := sha256.Sum256([]byte(tt.password + saltHex))
			require.Equal(t, hex.EncodeToString(sum[:]), digest)
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("samepassword")
	require.NoError(t, err)
	hash2, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.True(t, VerifyPassword("samepassword", hash1))
	require.True(t, VerifyPassword("samepassword", hash2))
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	passwords := []string{"", "a", "Passw0rd!", "пароль🔒密码", strings.Repeat("x", 1000)}

	// A handful of random strings on top of the fixed cases.
	r := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		b := make([]rune, r.IntN(40))
		for i := range b {
			b[i] = rune(r.IntN(0x2FFF) + 1)
		}
		passwords = append(passwords, string(b))
	}

	for _, p := range passwords {
		hash, err := HashPassword(p)
		require.NoError(t, err)
		require.True(t, VerifyPassword(p, hash), "password %q should verify", p)
		require.False(t, VerifyPassword(p+"x", hash), "different password must not verify")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor"} {
		require.False(t, VerifyPassword(wrong, hash), "password %q should not verify", wrong)
	}
}

func TestVerifyPassword_MalformedCredential(t *testing.T) {
	tests := []struct {
		name       string
		credential string
	}{
		{"empty", ""},
		{"no separator", "abcdef"},
		{"missing salt", ":abcdef"},
		{"missing digest", "abcdef:"},
		{"too many parts", "ab:cd:ef"},
		{"non-hex salt", "zz:abcdef"},
		{"argon2 missing parts", "$argon2id$v=19$m=19456"},
		{"argon2 wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"argon2 malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"argon2 invalid base64", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"argon2 zero rounds", "$argon2id$v=19$m=19456,t=0,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo"},
		{"argon2 zero parallelism", "$argon2id$v=19$m=19456,t=2,p=0$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo"},
		{"argon2 memory below lanes", "$argon2id$v=19$m=4,t=2,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo"},
		{"argon2 huge memory", "$argon2id$v=19$m=4294967295,t=2,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo"},
		{"argon2 too many rounds", "$argon2id$v=19$m=19456,t=1000000,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, VerifyPassword("anything", tt.credential))
			})
		})
	}
}

func TestHashPasswordArgon2id(t *testing.T) {
	hash, err := HashPasswordArgon2id("P@ssw0rd")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))
	require.True(t, VerifyPassword("P@ssw0rd", hash))
	require.False(t, VerifyPassword("p@ssw0rd", hash))
}

func TestHashPasswordWith(t *testing.T) {
	sha, err := HashPasswordWith(SchemeSHA256, "pw")
	require.NoError(t, err)
	require.Contains(t, sha, ":")

	def, err := HashPasswordWith("", "pw")
	require.NoError(t, err)
	require.True(t, VerifyPassword("pw", def))

	a2, err := HashPasswordWith(SchemeArgon2id, "pw")
	require.NoError(t, err)
	require.True(t, VerifyPassword("pw", a2))

	_, err = HashPasswordWith("bcrypt", "pw")
	require.Error(t, err)
}

func TestDefaultPasswordHash(t *testing.T) {
	hash, err := DefaultPasswordHash()
	require.NoError(t, err)
	require.True(t, VerifyPassword(DemoPassword, hash))
}
