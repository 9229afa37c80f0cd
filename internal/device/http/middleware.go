package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
	deviceUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/usecase"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/httputil"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// Request headers carrying device identity and the operator signed on at the
// POS client. Staff sign-on itself is the POS application's concern; the
// protocol records who acted but does not manage sessions.
const (
	HeaderDeviceID = "X-Device-ID"
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// AuthenticationMiddleware authenticates the calling device via its secret.
//
// The device presents "Authorization: Bearer <secret>" plus its ID in the
// X-Device-ID header. On success the assembled device context (device identity,
// operator headers, client IP) is stored in the request context for handlers
// and audit recording. Rejected attempts against protocol routes are persisted
// as UNAUTHORIZED audit entries so they show up in the security-event feed.
//
// Error handling:
//   - Missing or malformed headers → 401 Unauthorized
//   - Unknown device or wrong secret → 401 Unauthorized
//   - Deactivated device → 403 Forbidden
func AuthenticationMiddleware(
	devices deviceUseCase.DeviceUseCase,
	recorder auditUseCase.RecorderUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID, err := uuid.Parse(c.GetHeader(HeaderDeviceID))
		if err != nil {
			logger.Debug("device authentication failed: missing or malformed device id header")
			recordRejection(c, recorder, nil, nil, "missing or malformed device id header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		secret, ok := bearerSecret(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("device authentication failed: missing or malformed authorization header")
			recordRejection(c, recorder, &deviceID, nil, "missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		device, err := devices.Authenticate(c.Request.Context(), deviceID, secret)
		if err != nil {
			logger.Debug("device authentication failed",
				slog.String("device_id", deviceID.String()),
				slog.String("error", err.Error()))
			recordRejection(c, recorder, &deviceID, nil, err.Error())
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		dc := &tokenDomain.DeviceContext{
			DeviceID:   device.ID,
			DeviceType: device.DeviceType,
			TerminalID: device.TerminalID,
			UserID:     c.GetHeader(HeaderUserID),
			UserRole:   c.GetHeader(HeaderUserRole),
			IPAddress:  c.ClientIP(),
		}

		ctx := WithDeviceContext(c.Request.Context(), dc)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("device authentication successful",
			slog.String("device_id", device.ID.String()),
			slog.String("device_type", device.DeviceType))

		c.Next()
	}
}

// RequireRoleMiddleware restricts an endpoint to operators with one of the
// given roles. MUST be used after AuthenticationMiddleware. Role rejections on
// protocol routes are persisted as UNAUTHORIZED audit entries.
func RequireRoleMiddleware(
	recorder auditUseCase.RecorderUseCase,
	logger *slog.Logger,
	roles ...string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		dc, ok := GetDeviceContext(c.Request.Context())
		if !ok || dc == nil {
			logger.Debug("role check failed: no authenticated device in context")
			recordRejection(c, recorder, nil, nil, "no authenticated device in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		for _, role := range roles {
			if strings.EqualFold(dc.UserRole, role) {
				c.Next()
				return
			}
		}

		logger.Debug("role check failed: insufficient role",
			slog.String("device_id", dc.DeviceID.String()),
			slog.String("user_role", dc.UserRole))
		recordRejection(c, recorder, nil, dc, "insufficient role: "+dc.UserRole)
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
		c.Abort()
	}
}

// recordRejection persists a rejected attempt against a protocol route as an
// UNAUTHORIZED audit entry. Rejections on non-protocol routes (health checks,
// the security-event feed itself) are not protocol actions and are only logged.
func recordRejection(
	c *gin.Context,
	recorder auditUseCase.RecorderUseCase,
	deviceID *uuid.UUID,
	dc *tokenDomain.DeviceContext,
	message string,
) {
	action, ok := auditActionForRoute(c.FullPath())
	if !ok {
		return
	}

	ip := c.ClientIP()
	entry := &auditDomain.Entry{
		Action:       action,
		Status:       auditDomain.StatusUnauthorized,
		ErrorMessage: &message,
		DeviceID:     deviceID,
		IPAddress:    &ip,
	}

	if orderID, err := uuid.Parse(c.Param("order_id")); err == nil {
		entry.OrderID = &orderID
	}

	if dc != nil {
		entry.DeviceID = &dc.DeviceID
		entry.DeviceType = &dc.DeviceType
		entry.TerminalID = &dc.TerminalID
		if dc.UserID != "" {
			entry.UserID = &dc.UserID
		}
		if dc.UserRole != "" {
			entry.UserRole = &dc.UserRole
		}
	}

	recorder.Record(c.Request.Context(), entry)
}

// auditActionForRoute maps a protocol route to the audit action an attempt
// against it represents. Mirrors the route table in internal/http.
func auditActionForRoute(fullPath string) (auditDomain.Action, bool) {
	switch fullPath {
	case "/v1/orders/:order_id/payment-token":
		return auditDomain.ActionIssue, true
	case "/v1/orders/:order_id/payment-token/regenerate":
		return auditDomain.ActionRegenerate, true
	case "/v1/payment-tokens/scan":
		return auditDomain.ActionScan, true
	case "/v1/orders/:order_id/confirm-payment":
		return auditDomain.ActionConfirmPayment, true
	default:
		return "", false
	}
}

// bearerSecret extracts the secret from a Bearer authorization header.
func bearerSecret(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	secret := header[len(bearerPrefix):]
	if secret == "" {
		return "", false
	}
	return secret, true
}
