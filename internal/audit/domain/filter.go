package domain

import (
	"github.com/google/uuid"
)

// SecurityEventFilter narrows a security-event count to one device, source
// IP, or order. Nil fields match everything.
type SecurityEventFilter struct {
	DeviceID  *uuid.UUID
	IPAddress *string
	OrderID   *uuid.UUID
}
