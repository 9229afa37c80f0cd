package domain

import (
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

var (
	// ErrDeviceNotFound indicates no device matches the given ID.
	ErrDeviceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "device not found")

	// ErrDeviceInactive indicates the device exists but was deactivated.
	ErrDeviceInactive = apperrors.Wrap(apperrors.ErrForbidden, "device is not active")

	// ErrInvalidCredentials indicates authentication failed. Returned for both
	// unknown devices and wrong secrets to prevent device enumeration.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid device credentials")
)
