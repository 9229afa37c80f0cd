package dto

import (
	"time"

	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// IssuanceResponse contains the result of issuing or regenerating a token.
// QRData is returned exactly once; only its hash is stored server-side.
type IssuanceResponse struct {
	TokenID          string    `json:"token_id"`
	OrderID          string    `json:"order_id"`
	QRData           string    `json:"qr_data"`
	ShortCode        string    `json:"short_code"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int64     `json:"expires_in_seconds"`
}

// MapIssuanceToResponse converts a domain issuance to an API response.
func MapIssuanceToResponse(issuance *tokenDomain.Issuance) IssuanceResponse {
	return IssuanceResponse{
		TokenID:          issuance.TokenID.String(),
		OrderID:          issuance.OrderID.String(),
		QRData:           issuance.SignedToken,
		ShortCode:        issuance.ShortCode,
		IssuedAt:         issuance.IssuedAt,
		ExpiresAt:        issuance.ExpiresAt,
		ExpiresInSeconds: issuance.ExpiresInSeconds(time.Now().UTC()),
	}
}

// OrderSummaryResponse is the order projection shown on the payment screen.
type OrderSummaryResponse struct {
	ID            string    `json:"id"`
	OrderNumber   string    `json:"order_number"`
	TotalAmount   float64   `json:"total_amount"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// MapOrderSummaryToResponse converts a domain order summary to an API response.
func MapOrderSummaryToResponse(summary *orderDomain.Summary) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:            summary.ID.String(),
		OrderNumber:   summary.OrderNumber,
		TotalAmount:   summary.TotalAmount,
		PaymentStatus: string(summary.PaymentStatus),
		CreatedAt:     summary.CreatedAt,
	}
}

// ScanResponse contains the result of a successful scan.
type ScanResponse struct {
	Valid     bool                 `json:"valid"`
	TokenID   string               `json:"token_id"`
	ShortCode string               `json:"short_code"`
	ExpiresAt time.Time            `json:"expires_at"`
	Order     OrderSummaryResponse `json:"order"`
}

// MapScanResultToResponse converts a domain scan result to an API response.
func MapScanResultToResponse(result *tokenDomain.ScanResult) ScanResponse {
	return ScanResponse{
		Valid:     true,
		TokenID:   result.TokenID.String(),
		ShortCode: result.ShortCode,
		ExpiresAt: result.ExpiresAt,
		Order:     MapOrderSummaryToResponse(result.Order),
	}
}

// ConfirmPaymentResponse contains the result of a successful confirmation.
type ConfirmPaymentResponse struct {
	OrderID       string    `json:"order_id"`
	TokenID       string    `json:"token_id"`
	PaymentMethod string    `json:"payment_method"`
	AmountPaid    float64   `json:"amount_paid"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	PaidAt        time.Time `json:"paid_at"`
}

// MapConfirmResultToResponse converts a domain confirm result to an API response.
func MapConfirmResultToResponse(result *tokenDomain.ConfirmResult) ConfirmPaymentResponse {
	return ConfirmPaymentResponse{
		OrderID:       result.OrderID.String(),
		TokenID:       result.TokenID.String(),
		PaymentMethod: result.PaymentMethod,
		AmountPaid:    result.AmountPaid,
		TransactionID: result.TransactionID,
		PaidAt:        result.PaidAt,
	}
}
