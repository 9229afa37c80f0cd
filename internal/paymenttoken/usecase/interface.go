// Package usecase defines business logic interfaces for the payment-token protocol.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	outboxDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// TokenRepository defines persistence operations for payment tokens.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Create stores a new payment token. Returns a conflict error when the
	// nonce or short code collides with an existing token.
	Create(ctx context.Context, token *tokenDomain.Token) error

	// Get retrieves a token by ID. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, tokenID uuid.UUID) (*tokenDomain.Token, error)

	// GetByShortCode retrieves a token by its manual-entry code.
	// Returns ErrTokenNotFound if not found.
	GetByShortCode(ctx context.Context, shortCode string) (*tokenDomain.Token, error)

	// MarkUsed atomically consumes a token. Returns true only when this call
	// flipped the used flag; false means another caller consumed it first.
	MarkUsed(
		ctx context.Context,
		tokenID uuid.UUID,
		usedAt time.Time,
		usedByUser *string,
		usedByDevice *uuid.UUID,
		reason string,
	) (bool, error)

	// InvalidateActiveForOrder marks every not-yet-used token of the order as
	// used with the given reason. Returns the number of tokens invalidated.
	InvalidateActiveForOrder(ctx context.Context, orderID uuid.UUID, usedAt time.Time, reason string) (int64, error)

	// DeleteIssuedBefore removes token records issued before the cutoff.
	DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountIssuedBefore counts token records issued before the cutoff.
	CountIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderRepository defines the order operations the protocol needs: a ReadOnly
// projection for scanning and the payment write-back on confirmation.
type OrderRepository interface {
	// Get retrieves an order summary by ID. Returns ErrOrderNotFound if not found.
	Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Summary, error)

	// MarkPaid writes the payment fields of a confirmed order.
	MarkPaid(ctx context.Context, orderID uuid.UUID, update orderDomain.PaymentUpdate) error
}

// OutboxEventRepository is the write side of the outbox consumed by confirmation.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.Event) error
}

// IssuerUseCase creates and replaces payment tokens for orders awaiting payment.
type IssuerUseCase interface {
	// Issue creates a fresh token for the order and returns the signed token
	// and short code. Any previously valid token for the order is invalidated
	// in the same transaction, so at most one valid token exists per order.
	//
	// Returns ErrOrderNotFound if the order doesn't exist, ErrOrderAlreadyPaid
	// if its payment status is terminal, and ErrTokenGeneration if nonce or
	// short-code generation kept colliding past the bounded retry count.
	Issue(
		ctx context.Context,
		orderID uuid.UUID,
		device *tokenDomain.DeviceContext,
	) (*tokenDomain.Issuance, error)

	// Regenerate replaces the order's token after expiry or loss. Semantics
	// match Issue; only the recorded audit action differs.
	Regenerate(
		ctx context.Context,
		orderID uuid.UUID,
		device *tokenDomain.DeviceContext,
	) (*tokenDomain.Issuance, error)

	// CleanupExpired deletes token records that passed the retention period.
	// Returns the number of records removed. Validity never depends on this
	// sweep; it is storage hygiene only.
	CleanupExpired(ctx context.Context) (int64, error)
}

// ScannerUseCase resolves and validates a presented token without consuming it.
type ScannerUseCase interface {
	// Scan verifies a signed token or short code and returns the order summary
	// for the payment screen. Scanning is read-only: the same valid token can
	// be scanned any number of times until it is confirmed or expires.
	//
	// Returns ErrTokenInvalid, ErrTokenExpired, ErrTokenUsed, ErrTokenNotFound,
	// or ErrOrderAlreadyPaid depending on what check failed.
	Scan(
		ctx context.Context,
		input *tokenDomain.ScanInput,
		device *tokenDomain.DeviceContext,
	) (*tokenDomain.ScanResult, error)
}

// ConfirmerUseCase settles an order against a valid token exactly once.
type ConfirmerUseCase interface {
	// Confirm re-validates the token, consumes it, marks the order paid, and
	// stages the payment-confirmed event, all in one transaction. Of N
	// concurrent confirmations for the same token exactly one succeeds; the
	// rest get ErrTokenUsed.
	Confirm(
		ctx context.Context,
		input *tokenDomain.ConfirmInput,
		device *tokenDomain.DeviceContext,
	) (*tokenDomain.ConfirmResult, error)
}
