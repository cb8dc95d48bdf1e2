package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Scheme selects how new credentials are produced. Verification always
// accepts every supported scheme.
type Scheme string

const (
	// SchemeSHA256 produces "<salt-hex>:<digest-hex>" credentials.
	SchemeSHA256 Scheme = "sha256"
	// SchemeArgon2id produces PHC-format Argon2id credentials.
	SchemeArgon2id Scheme = "argon2id"
)

// DemoPassword is the password every seeded demonstration account shares.
const DemoPassword = "Welcome123!"

const (
	saltLength = 16

	// Argon2id parameters
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
)

// HashPassword generates a random 16-byte salt and returns
// "<salt-hex>:<sha256(password + salt-hex)-hex>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + ":" + digestHex(password, saltHex), nil
}

// HashPasswordArgon2id generates a PHC-format Argon2id hash string including
// salt and parameters.
func HashPasswordArgon2id(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// HashPasswordWith hashes the password using the given scheme. An empty
// scheme means SchemeSHA256.
func HashPasswordWith(scheme Scheme, password string) (string, error) {
	switch scheme {
	case SchemeSHA256, "":
		return HashPassword(password)
	case SchemeArgon2id:
		return HashPasswordArgon2id(password)
	default:
		return "", fmt.Errorf("cryptox: unknown password scheme %q", scheme)
	}
}

// VerifyPassword reports whether password matches the stored credential.
// Malformed credentials never match.
func VerifyPassword(password, credential string) bool {
	if strings.HasPrefix(credential, "$argon2id$") {
		return verifyArgon2id(password, credential)
	}

	saltHex, digest, ok := strings.Cut(credential, ":")
	if !ok || saltHex == "" || digest == "" || strings.Contains(digest, ":") {
		return false
	}
	if _, err := hex.DecodeString(saltHex); err != nil {
		return false
	}

	computed := digestHex(password, saltHex)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(digest))) == 1
}

// DefaultPasswordHash returns a fresh credential for DemoPassword.
func DefaultPasswordHash() (string, error) {
	return HashPassword(DemoPassword)
}

func digestHex(password, saltHex string) string {
	sum := sha256.Sum256([]byte(password + saltHex))
	return hex.EncodeToString(sum[:])
}

// Bounds on stored Argon2id parameters; credentials outside them never verify.
const (
	argon2MaxMemoryKiB  = 1 << 20 // 1 GiB
	argon2MaxIterations = 10
)

// verifyArgon2id parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash and recomputes.
func verifyArgon2id(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false
	}
	if iters == 0 || iters > argon2MaxIterations || par == 0 ||
		mem < 8*uint32(par) || mem > argon2MaxMemoryKiB {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - bounded by the decoded hash length
	)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
