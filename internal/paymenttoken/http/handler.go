// Package http provides HTTP handlers for the payment-token protocol endpoints.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	deviceHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/http"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/httputil"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/http/dto"
	tokenUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/usecase"
	customValidation "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/validation"
)

// TokenHandler handles HTTP requests for the token protocol: issuance,
// regeneration, scanning, and payment confirmation.
type TokenHandler struct {
	issuer    tokenUseCase.IssuerUseCase
	scanner   tokenUseCase.ScannerUseCase
	confirmer tokenUseCase.ConfirmerUseCase
	logger    *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	issuer tokenUseCase.IssuerUseCase,
	scanner tokenUseCase.ScannerUseCase,
	confirmer tokenUseCase.ConfirmerUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		issuer:    issuer,
		scanner:   scanner,
		confirmer: confirmer,
		logger:    logger,
	}
}

// IssueHandler issues a payment token for an order awaiting payment.
// POST /v1/orders/:order_id/payment-token
// Returns 201 Created with the signed token and short code.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	orderID, ok := h.orderIDParam(c)
	if !ok {
		return
	}

	dc, _ := deviceHTTP.GetDeviceContext(c.Request.Context())

	issuance, err := h.issuer.Issue(c.Request.Context(), orderID, dc)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssuanceToResponse(issuance))
}

// RegenerateHandler replaces an order's token after expiry or loss.
// POST /v1/orders/:order_id/payment-token/regenerate
// Returns 201 Created with the fresh signed token; prior tokens are invalidated.
func (h *TokenHandler) RegenerateHandler(c *gin.Context) {
	orderID, ok := h.orderIDParam(c)
	if !ok {
		return
	}

	dc, _ := deviceHTTP.GetDeviceContext(c.Request.Context())

	issuance, err := h.issuer.Regenerate(c.Request.Context(), orderID, dc)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssuanceToResponse(issuance))
}

// ScanHandler validates a presented token without consuming it.
// POST /v1/payment-tokens/scan
// Returns 200 OK with the order summary for the payment screen.
func (h *TokenHandler) ScanHandler(c *gin.Context) {
	var req dto.ScanRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	dc, _ := deviceHTTP.GetDeviceContext(c.Request.Context())

	result, err := h.scanner.Scan(c.Request.Context(), req.ToScanInput(), dc)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapScanResultToResponse(result))
}

// ConfirmHandler settles an order against a valid token exactly once.
// POST /v1/orders/:order_id/confirm-payment
// Returns 200 OK on the winning confirmation; concurrent duplicates get 409.
func (h *TokenHandler) ConfirmHandler(c *gin.Context) {
	orderID, ok := h.orderIDParam(c)
	if !ok {
		return
	}

	var req dto.ConfirmPaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToConfirmInput(orderID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	dc, _ := deviceHTTP.GetDeviceContext(c.Request.Context())

	result, err := h.confirmer.Confirm(c.Request.Context(), input, dc)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConfirmResultToResponse(result))
}

// orderIDParam parses and validates the order_id path parameter.
func (h *TokenHandler) orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid order ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return orderID, true
}
