// Package domain defines the audit-trail domain model.
// One immutable entry is appended per protocol action, success or failure,
// for compliance and security monitoring.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the protocol action an audit entry records.
type Action string

const (
	ActionIssue          Action = "ISSUE"
	ActionScan           Action = "SCAN"
	ActionValidate       Action = "VALIDATE"
	ActionConfirmPayment Action = "CONFIRM_PAYMENT"
	ActionCancel         Action = "CANCEL"
	ActionRegenerate     Action = "REGENERATE"
)

// Status is the recorded outcome of the action. It always matches the result
// returned to the caller.
type Status string

const (
	StatusSuccess      Status = "SUCCESS"
	StatusFailed       Status = "FAILED"
	StatusExpired      Status = "EXPIRED"
	StatusInvalid      Status = "INVALID"
	StatusDuplicate    Status = "DUPLICATE"
	StatusUnauthorized Status = "UNAUTHORIZED"
)

// Entry is one append-only audit record. OrderID and TokenID are nullable
// because a lookup can fail before either is resolved. The signature is an
// HMAC over the canonical entry, making tampering detectable.
type Entry struct {
	ID               uuid.UUID
	OrderID          *uuid.UUID
	TokenID          *uuid.UUID
	ShortCode        *string
	Action           Action
	Status           Status
	ErrorMessage     *string
	DeviceID         *uuid.UUID
	DeviceType       *string
	TerminalID       *string
	UserID           *string
	UserRole         *string
	IPAddress        *string
	PaymentMethod    *string
	PaymentAmount    *float64
	TransactionID    *string
	ProcessingTimeMs int64
	ScanTimestamp    time.Time
	Signature        []byte
}

// IsSecurityEvent reports whether the entry records a failed, invalid,
// expired, duplicate, or unauthorized attempt. Consumed by the external
// alerting collaborator.
func (e *Entry) IsSecurityEvent() bool {
	switch e.Status {
	case StatusFailed, StatusInvalid, StatusExpired, StatusDuplicate, StatusUnauthorized:
		return true
	default:
		return false
	}
}
