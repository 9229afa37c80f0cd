// Package service provides technical services for the payment-token protocol:
// signed token creation and verification, nonce and short-code generation,
// and signing-key loading.
package service

import (
	"context"
	"time"

	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// TokenSigner signs and verifies the tamper-evident payment token and hashes
// the signed form for storage. Implementations must reject tokens whose
// signature does not verify or whose expiry claim has passed.
type TokenSigner interface {
	// Sign builds a signed token embedding the claims with the given lifetime.
	Sign(claims *tokenDomain.Claims, issuedAt, expiresAt time.Time) (string, error)

	// Verify checks the signature and expiry claim of a presented token and
	// returns the embedded claims. Returns ErrTokenExpired when only the expiry
	// claim failed, ErrTokenInvalid for any other verification failure.
	Verify(signedToken string) (*tokenDomain.Claims, error)

	// HashToken hashes a signed token with SHA-256 for storage and comparison.
	// Lets lookups detect substitution without re-verifying the signature.
	HashToken(signedToken string) string
}

// Generator produces the random values embedded in a token issuance.
// Implementations must use cryptographically secure randomness.
type Generator interface {
	// Nonce creates a unique anti-replay value.
	Nonce() (string, error)

	// ShortCode creates a manual-entry fallback code of the given length from
	// an unambiguous uppercase alphanumeric charset.
	ShortCode(length int) (string, error)
}

// SigningKeyLoader resolves the token signing key at startup, either directly
// from configuration or by unwrapping it through a KMS.
type SigningKeyLoader interface {
	Load(ctx context.Context) ([]byte, error)
}
