package domain

import (
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

var (
	// ErrOrderNotFound indicates no order with the specified ID exists.
	ErrOrderNotFound = apperrors.Wrap(apperrors.ErrNotFound, "order not found")
)
