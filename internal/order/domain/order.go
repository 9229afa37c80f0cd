// Package domain defines the narrow order boundary used by payment confirmation.
//
// Orders are owned by the external order-management service. This package
// models only what the payment-confirmation core reads (identity, total,
// payment status) and updates (payment fields on confirmation).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// Summary is the read-only order projection returned to scanning devices.
type Summary struct {
	ID            uuid.UUID
	OrderNumber   string
	TotalAmount   float64
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

// IsPaid reports whether the order's payment status is terminal.
func (s *Summary) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// PaymentUpdate carries the fields written back to the order on confirmation.
type PaymentUpdate struct {
	PaymentMethod string
	TransactionID *string
	PaidAt        time.Time
}
