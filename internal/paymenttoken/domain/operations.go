package domain

import (
	"time"

	"github.com/google/uuid"

	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
)

// DeviceContext identifies the staff device and operator behind a scan or
// confirmation attempt. Captured on every audit entry.
type DeviceContext struct {
	DeviceID   uuid.UUID
	DeviceType string
	TerminalID string
	UserID     string
	UserRole   string
	IPAddress  string
}

// ScanInput is a presented token or short code. Exactly one of SignedToken
// and ShortCode is set; the signed token wins when both are present.
type ScanInput struct {
	SignedToken string
	ShortCode   string
}

// ScanResult is the read-only outcome of a successful scan. Scanning never
// consumes the token.
type ScanResult struct {
	TokenID   uuid.UUID
	ShortCode string
	ExpiresAt time.Time
	Order     *orderDomain.Summary
}

// ConfirmInput carries a payment confirmation request.
type ConfirmInput struct {
	OrderID        uuid.UUID
	TokenID        uuid.UUID
	PaymentMethod  string
	TransactionID  *string
	AmountReceived *float64
	Notes          *string
}

// ConfirmResult is the outcome of a successful, exactly-once confirmation.
type ConfirmResult struct {
	OrderID       uuid.UUID
	TokenID       uuid.UUID
	PaymentMethod string
	AmountPaid    float64
	TransactionID *string
	PaidAt        time.Time
}

// Payment methods accepted at confirmation time.
const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodMobile = "MOBILE"
)

// KnownPaymentMethods lists the accepted payment method values.
var KnownPaymentMethods = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile}
