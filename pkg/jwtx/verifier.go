package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrWeakSecret  = errors.New("jwtx: secret too short")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier checks tokens produced by an HS256Signer with the same secret.
type HS256Verifier struct {
	secret []byte
	opts   VerifyOptions
}

// NewVerifierHS256 creates a verifier for the shared secret.
func NewVerifierHS256(secret []byte, opts VerifyOptions) (*HS256Verifier, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HS256Verifier{secret: append([]byte(nil), secret...), opts: opts}, nil
}

// Verify parses the token, checks the signature and validates issuer and
// time-based claims.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrAlgMismatch
		}
		return v.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrAlgMismatch):
		return Claims{}, ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, errors.Join(ErrMalformed, err)
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.opts.Now().UTC(), v.opts.Leeway); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" || claims.SID == "" {
		return Claims{}, ErrInvalidClaim
	}
	return claims, nil
}
