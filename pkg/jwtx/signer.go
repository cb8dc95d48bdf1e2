package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted, in bytes.
const MinSecretLength = 32

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs session tokens with a shared HMAC secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer. Secrets shorter than
// MinSecretLength are rejected.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: append([]byte(nil), secret...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	if claims.Subject == "" || claims.SID == "" {
		return "", errors.Join(ErrInvalidClaim, errors.New("jwtx: subject and sid are required"))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
