package jwtx

import "errors"

// Verifier validates a JWT and returns its claims if it is legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Signer mints JWTs. The service itself only verifies; signing exists for
// local tooling and tests.
type Signer interface {
	Sign(Claims) (string, error)
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrWeakSecret   = errors.New("jwtx: secret must be at least 32 bytes")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)
