package domain

import (
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

// Payment token protocol errors. Each maps to one code of the scan/confirm
// error taxonomy; all are recoverable at the caller.
var (
	// ErrTokenNotFound indicates no token record matches the presented token or short code.
	ErrTokenNotFound = apperrors.Wrap(apperrors.ErrNotFound, "payment token not found")

	// ErrTokenExpired indicates the token's expiry instant has passed.
	ErrTokenExpired = apperrors.Wrap(apperrors.ErrGone, "payment token expired")

	// ErrTokenUsed indicates the token was already consumed, including loss of a
	// concurrent confirmation race.
	ErrTokenUsed = apperrors.Wrap(apperrors.ErrConflict, "payment token already used")

	// ErrTokenInvalid indicates a signature, hash, or nonce mismatch. Treated as
	// a security event.
	ErrTokenInvalid = apperrors.Wrap(apperrors.ErrInvalidInput, "payment token invalid")

	// ErrOrderAlreadyPaid indicates the referenced order's payment status is already terminal.
	ErrOrderAlreadyPaid = apperrors.Wrap(apperrors.ErrConflict, "order already paid")

	// ErrAmountMismatch indicates the received amount differs from the order total
	// beyond the configured tolerance.
	ErrAmountMismatch = apperrors.Wrap(apperrors.ErrInvalidInput, "received amount does not match order total")

	// ErrTokenGeneration indicates nonce/short code generation kept colliding past
	// the bounded retry count. A value is never silently reused.
	ErrTokenGeneration = apperrors.New("failed to generate a unique payment token")
)
