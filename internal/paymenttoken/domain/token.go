// Package domain defines the payment-token domain model.
//
// A payment token binds one order to a one-time-use, signed proof of the right
// to confirm payment. Validity is derived from the record's two mutable facts
// (the used flag and the clock), never cached in a status column.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is an immutable snapshot of one token issuance for one order.
// Mutation happens only through the repository's conditional mark-used
// operation; readers always recompute validity via IsValidForUse.
type Token struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Nonce        string
	ShortCode    string
	TokenHash    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	Used         bool
	UsedAt       *time.Time
	UsedByUser   *string
	UsedByDevice *uuid.UUID
	UsedReason   *string
}

// IsValidForUse reports whether the token can still complete a confirmation:
// never consumed and not yet expired at the given instant.
func (t *Token) IsValidForUse(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// State is the derived lifecycle state of a token. There is no stored status
// column; USED and EXPIRED are terminal.
type State string

const (
	StateValid   State = "VALID"
	StateUsed    State = "USED"
	StateExpired State = "EXPIRED"
)

// State derives the lifecycle state at the given instant. A consumed token
// reports USED even when it has also passed its expiry.
func (t *Token) State(now time.Time) State {
	switch {
	case t.Used:
		return StateUsed
	case !now.Before(t.ExpiresAt):
		return StateExpired
	default:
		return StateValid
	}
}

// Reasons recorded when a token is marked used.
const (
	// UsedReasonConfirmed marks consumption by a successful payment confirmation.
	UsedReasonConfirmed = "confirmed"

	// UsedReasonSuperseded marks invalidation by a later regeneration for the same order.
	UsedReasonSuperseded = "superseded"
)
