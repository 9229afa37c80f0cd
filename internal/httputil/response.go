// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// ErrorResponse represents a structured error response. Code is stable and
// machine-readable so scanning devices can branch on it; Message is for the
// operator on the screen.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleErrorGin maps protocol and domain errors to HTTP status codes and
// stable error codes, then writes the JSON response.
//
// Every recoverable scan/confirm failure has its own code so the device can
// tell the operator what to do next: a TOKEN_EXPIRED points at regeneration,
// a TOKEN_USED at a duplicate scan, an ORDER_ALREADY_PAID at a settled order.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, tokenDomain.ErrTokenExpired):
		statusCode = http.StatusGone
		errorResponse = ErrorResponse{
			Error:   "TOKEN_EXPIRED",
			Message: "The payment token has expired, regenerate the QR code",
		}

	case apperrors.Is(err, tokenDomain.ErrTokenUsed):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "TOKEN_USED",
			Message: "The payment token was already used",
		}

	case apperrors.Is(err, tokenDomain.ErrTokenNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "TOKEN_NOT_FOUND",
			Message: "No payment token matches the scanned code",
		}

	case apperrors.Is(err, tokenDomain.ErrTokenInvalid):
		statusCode = http.StatusBadRequest
		errorResponse = ErrorResponse{
			Error:   "TOKEN_INVALID",
			Message: "The payment token failed verification",
		}

	case apperrors.Is(err, tokenDomain.ErrOrderAlreadyPaid):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "ORDER_ALREADY_PAID",
			Message: "The order has already been paid",
		}

	case apperrors.Is(err, orderDomain.ErrOrderNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "ORDER_NOT_FOUND",
			Message: "The referenced order was not found",
		}

	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "CONFLICT",
			Message: "A conflict occurred with existing data",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: err.Error(),
		}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "UNAUTHORIZED",
			Message: "Device authentication is required",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "FORBIDDEN",
			Message: "The device is not allowed to perform this operation",
		}

	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		statusCode = http.StatusTooManyRequests
		errorResponse = ErrorResponse{
			Error:   "RATE_LIMITED",
			Message: "Too many requests, slow down",
		}

	default:
		// For unknown/internal errors, don't expose details to the client
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Message: "An internal error occurred",
		}
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "BAD_REQUEST",
		Message: err.Error(),
	}

	c.JSON(http.StatusBadRequest, errorResponse)
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: err.Error(),
	}

	c.JSON(http.StatusUnprocessableEntity, errorResponse)
}
