package usecase

import (
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// auditEntry builds an audit entry carrying the device context and elapsed
// processing time. Callers fill the token, order, and payment fields that are
// known on their path before handing the entry to the recorder.
func auditEntry(
	action auditDomain.Action,
	status auditDomain.Status,
	device *tokenDomain.DeviceContext,
	start time.Time,
) *auditDomain.Entry {
	entry := &auditDomain.Entry{
		Action:           action,
		Status:           status,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		ScanTimestamp:    time.Now().UTC(),
	}

	if device != nil {
		if device.DeviceID != uuid.Nil {
			deviceID := device.DeviceID
			entry.DeviceID = &deviceID
		}
		entry.DeviceType = optionalString(device.DeviceType)
		entry.TerminalID = optionalString(device.TerminalID)
		entry.UserID = optionalString(device.UserID)
		entry.UserRole = optionalString(device.UserRole)
		entry.IPAddress = optionalString(device.IPAddress)
	}

	return entry
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func errorMessage(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}
