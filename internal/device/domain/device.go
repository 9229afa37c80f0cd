// Package domain defines the staff device registry domain model.
//
// Scanning and confirmation are staff-facing: only registered, active devices
// may call the protocol endpoints. Devices authenticate with a secret issued
// at registration time; the operator behind the device is carried in request
// headers by the POS client, which handles staff sign-on itself.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Device types registered at the counter.
const (
	DeviceTypeHandheldScanner = "handheld_scanner"
	DeviceTypePOSTerminal     = "pos_terminal"
	DeviceTypeManagerTablet   = "manager_tablet"
)

// KnownDeviceTypes lists the accepted device type values.
var KnownDeviceTypes = []string{DeviceTypeHandheldScanner, DeviceTypePOSTerminal, DeviceTypeManagerTablet}

// Device is a registered staff device. Secret holds the Argon2id hash of the
// device secret, never the plaintext.
type Device struct {
	ID         uuid.UUID
	Name       string
	DeviceType string
	TerminalID string
	Secret     string //nolint:gosec // hashed device secret (not plaintext)
	IsActive   bool
	CreatedAt  time.Time
}

// CreateDeviceInput carries the fields for registering a device.
type CreateDeviceInput struct {
	Name       string
	DeviceType string
	TerminalID string
}

// CreateDeviceOutput is returned once at registration. PlainSecret is the only
// time the secret is visible; only its hash is stored.
type CreateDeviceOutput struct {
	ID          uuid.UUID
	PlainSecret string
}
