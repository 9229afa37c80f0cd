// Package domain defines the transactional-outbox event model used to notify
// external collaborators about payment confirmations.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the delivery status of an outbox event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
)

// EventTypePaymentConfirmed is emitted once per successful confirmation.
// Delivery is at-least-once; consumers must deduplicate by order reference.
const EventTypePaymentConfirmed = "payment.confirmed"

// Event is one row in the transactional outbox. It is written in the same
// transaction as the state change it announces, then delivered asynchronously.
type Event struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      EventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentConfirmedPayload is the JSON payload of a payment.confirmed event.
// The cash-reconciliation collaborator records a drawer transaction for the
// confirming operator when PaymentMethod is CASH.
type PaymentConfirmedPayload struct {
	OrderID       uuid.UUID `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	Amount        float64   `json:"amount"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	ConfirmedBy   string    `json:"confirmed_by"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}
