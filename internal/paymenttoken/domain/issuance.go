package domain

import (
	"time"

	"github.com/google/uuid"
)

// Issuance is the result of issuing or regenerating a payment token. The
// signed token is returned exactly once for the client to render as a QR
// image; only its hash is persisted.
type Issuance struct {
	TokenID     uuid.UUID
	OrderID     uuid.UUID
	SignedToken string
	ShortCode   string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ExpiresInSeconds derives the remaining lifetime at the given instant,
// clamped at zero.
func (i *Issuance) ExpiresInSeconds(now time.Time) int64 {
	remaining := int64(i.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Claims is the payload embedded in the signed token. The nonce is mirrored
// in storage and compared at validation time to detect substitution.
type Claims struct {
	TokenID uuid.UUID
	OrderID uuid.UUID
	Nonce   string
}
