// Package http provides device authentication middleware for the protocol endpoints.
package http

import (
	"context"

	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// deviceContextKey is a context key type for storing the authenticated device context.
type deviceContextKey struct{}

// WithDeviceContext stores the authenticated device context in the context.
// Called by the authentication middleware after successful device validation.
func WithDeviceContext(ctx context.Context, dc *tokenDomain.DeviceContext) context.Context {
	return context.WithValue(ctx, deviceContextKey{}, dc)
}

// GetDeviceContext retrieves the authenticated device context.
// Returns (dc, true) if present, or (nil, false) if no device was set.
func GetDeviceContext(ctx context.Context) (*tokenDomain.DeviceContext, bool) {
	dc, ok := ctx.Value(deviceContextKey{}).(*tokenDomain.DeviceContext)
	return dc, ok
}
