// Package http provides HTTP handlers for the audit-trail read side.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/httputil"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

// EntryResponse represents an audit entry in API responses. The HMAC
// signature is not exposed.
type EntryResponse struct {
	ID               string    `json:"id"`
	OrderID          *string   `json:"order_id,omitempty"`
	TokenID          *string   `json:"token_id,omitempty"`
	ShortCode        *string   `json:"short_code,omitempty"`
	Action           string    `json:"action"`
	Status           string    `json:"status"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	DeviceID         *string   `json:"device_id,omitempty"`
	DeviceType       *string   `json:"device_type,omitempty"`
	TerminalID       *string   `json:"terminal_id,omitempty"`
	UserID           *string   `json:"user_id,omitempty"`
	UserRole         *string   `json:"user_role,omitempty"`
	IPAddress        *string   `json:"ip_address,omitempty"`
	PaymentMethod    *string   `json:"payment_method,omitempty"`
	PaymentAmount    *float64  `json:"payment_amount,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	ScanTimestamp    time.Time `json:"scan_timestamp"`
}

// ListSecurityEventsResponse is the security-event feed for the alerting collaborator.
type ListSecurityEventsResponse struct {
	Count int64           `json:"count"`
	Data  []EntryResponse `json:"data"`
}

// MapEntryToResponse converts a domain audit entry to an API response.
func MapEntryToResponse(entry *auditDomain.Entry) EntryResponse {
	return EntryResponse{
		ID:               entry.ID.String(),
		OrderID:          uuidString(entry.OrderID),
		TokenID:          uuidString(entry.TokenID),
		ShortCode:        entry.ShortCode,
		Action:           string(entry.Action),
		Status:           string(entry.Status),
		ErrorMessage:     entry.ErrorMessage,
		DeviceID:         uuidString(entry.DeviceID),
		DeviceType:       entry.DeviceType,
		TerminalID:       entry.TerminalID,
		UserID:           entry.UserID,
		UserRole:         entry.UserRole,
		IPAddress:        entry.IPAddress,
		PaymentMethod:    entry.PaymentMethod,
		PaymentAmount:    entry.PaymentAmount,
		ProcessingTimeMs: entry.ProcessingTimeMs,
		ScanTimestamp:    entry.ScanTimestamp,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// SecurityEventHandler serves security events to monitoring tooling.
type SecurityEventHandler struct {
	recorder      auditUseCase.RecorderUseCase
	defaultWindow time.Duration
	logger        *slog.Logger
}

// NewSecurityEventHandler creates a new security event handler.
func NewSecurityEventHandler(
	recorder auditUseCase.RecorderUseCase,
	defaultWindow time.Duration,
	logger *slog.Logger,
) *SecurityEventHandler {
	return &SecurityEventHandler{
		recorder:      recorder,
		defaultWindow: defaultWindow,
		logger:        logger,
	}
}

// ListHandler lists security events in a trailing window, newest first.
// GET /v1/security-events?window_minutes=60&limit=100
func (h *SecurityEventHandler) ListHandler(c *gin.Context) {
	window := h.defaultWindow
	if raw := c.Query("window_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			httputil.HandleBadRequestGin(c, errInvalidWindow, h.logger)
			return
		}
		window = time.Duration(minutes) * time.Minute
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxEventLimit {
			httputil.HandleBadRequestGin(c, errInvalidLimit, h.logger)
			return
		}
		limit = parsed
	}

	entries, err := h.recorder.RecentSecurityEvents(c.Request.Context(), window, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	count, err := h.recorder.SecurityEventCount(c.Request.Context(), window, auditDomain.SecurityEventFilter{})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	data := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapEntryToResponse(entry))
	}

	c.JSON(http.StatusOK, ListSecurityEventsResponse{
		Count: count,
		Data:  data,
	})
}

var (
	errInvalidWindow = &paramError{"window_minutes must be a positive integer"}
	errInvalidLimit  = &paramError{"limit must be a positive integer up to 500"}
)

type paramError struct {
	msg string
}

func (e *paramError) Error() string {
	return e.msg
}
