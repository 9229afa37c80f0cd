// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
	customValidation "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/validation"
)

// ScanRequest contains a presented payment token. QRData carries the signed
// token read from the QR image; ShortCode carries the manual-entry fallback.
// At least one must be present; QRData wins when both are.
type ScanRequest struct {
	QRData    string `json:"qr_data"`
	ShortCode string `json:"short_code"`
}

// Validate checks if the scan request is valid.
func (r *ScanRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.QRData,
			validation.Required.When(strings.TrimSpace(r.ShortCode) == "").
				Error("either qr_data or short_code is required"),
			validation.Length(0, 2048),
		),
		validation.Field(&r.ShortCode,
			validation.By(normalizedShortCode),
		),
	)
}

// ToScanInput converts the request to the scan input, normalizing the short code.
func (r *ScanRequest) ToScanInput() *tokenDomain.ScanInput {
	return &tokenDomain.ScanInput{
		SignedToken: strings.TrimSpace(r.QRData),
		ShortCode:   strings.ToUpper(strings.TrimSpace(r.ShortCode)),
	}
}

// normalizedShortCode validates the short code after trimming and uppercasing,
// so staff can key in lowercase.
func normalizedShortCode(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_short_code_type", "must be a string")
	}
	return customValidation.ShortCode.Validate(strings.ToUpper(strings.TrimSpace(s)))
}

// ConfirmPaymentRequest contains the parameters for confirming a payment.
type ConfirmPaymentRequest struct {
	TokenID        string   `json:"token_id"`
	PaymentMethod  string   `json:"payment_method"`
	TransactionID  *string  `json:"transaction_id"`
	AmountReceived *float64 `json:"amount_received"`
	Notes          *string  `json:"notes"`
}

// Validate checks if the confirm payment request is valid.
func (r *ConfirmPaymentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TokenID,
			validation.Required,
			validation.By(validUUID),
		),
		validation.Field(&r.PaymentMethod,
			validation.Required,
			validation.In(anySlice(tokenDomain.KnownPaymentMethods)...),
		),
		validation.Field(&r.TransactionID,
			validation.Length(1, 255),
		),
		validation.Field(&r.AmountReceived,
			validation.Min(0.0),
		),
		validation.Field(&r.Notes,
			validation.Length(0, 500),
		),
	)
}

// ToConfirmInput converts the request to the confirm input for the given order.
func (r *ConfirmPaymentRequest) ToConfirmInput(orderID uuid.UUID) (*tokenDomain.ConfirmInput, error) {
	tokenID, err := uuid.Parse(r.TokenID)
	if err != nil {
		return nil, err
	}

	return &tokenDomain.ConfirmInput{
		OrderID:        orderID,
		TokenID:        tokenID,
		PaymentMethod:  r.PaymentMethod,
		TransactionID:  r.TransactionID,
		AmountReceived: r.AmountReceived,
		Notes:          r.Notes,
	}, nil
}

// validUUID validates that a string parses as a UUID.
func validUUID(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}

// anySlice converts a string slice to the []interface{} form validation.In expects.
func anySlice(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
