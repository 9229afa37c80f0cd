package dto

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

func TestScanRequest_Validate(t *testing.T) {
	t.Run("Success_QRData", func(t *testing.T) {
		req := ScanRequest{QRData: "eyJhbGciOiJIUzI1NiJ9.payload.signature"}

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Success_ShortCode", func(t *testing.T) {
		req := ScanRequest{ShortCode: "ABC234"}

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Success_LowercaseShortCode", func(t *testing.T) {
		req := ScanRequest{ShortCode: " abc234 "}

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Error_BothMissing", func(t *testing.T) {
		req := ScanRequest{}

		err := req.Validate()
		assert.Error(t, err)
	})

	t.Run("Error_OversizedQRData", func(t *testing.T) {
		req := ScanRequest{QRData: strings.Repeat("a", 2049)}

		err := req.Validate()
		assert.Error(t, err)
	})

	t.Run("Error_MalformedShortCode", func(t *testing.T) {
		req := ScanRequest{ShortCode: "AB-234"}

		err := req.Validate()
		assert.Error(t, err)
	})
}

func TestScanRequest_ToScanInput(t *testing.T) {
	req := ScanRequest{QRData: " signed-token ", ShortCode: " abc234 "}

	input := req.ToScanInput()
	assert.Equal(t, "signed-token", input.SignedToken)
	assert.Equal(t, "ABC234", input.ShortCode)
}

func TestConfirmPaymentRequest_Validate(t *testing.T) {
	tokenID := uuid.Must(uuid.NewV7()).String()

	t.Run("Success_ValidRequest", func(t *testing.T) {
		amount := 42.50
		req := ConfirmPaymentRequest{
			TokenID:        tokenID,
			PaymentMethod:  tokenDomain.PaymentMethodCash,
			AmountReceived: &amount,
		}

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Error_MissingTokenID", func(t *testing.T) {
		req := ConfirmPaymentRequest{
			PaymentMethod: tokenDomain.PaymentMethodCash,
		}

		err := req.Validate()
		assert.Error(t, err)
	})

	t.Run("Error_MalformedTokenID", func(t *testing.T) {
		req := ConfirmPaymentRequest{
			TokenID:       "not-a-uuid",
			PaymentMethod: tokenDomain.PaymentMethodCash,
		}

		err := req.Validate()
		assert.Error(t, err)
	})

	t.Run("Error_UnknownPaymentMethod", func(t *testing.T) {
		req := ConfirmPaymentRequest{
			TokenID:       tokenID,
			PaymentMethod: "BARTER",
		}

		err := req.Validate()
		assert.Error(t, err)
	})

	t.Run("Error_NegativeAmount", func(t *testing.T) {
		amount := -0.01
		req := ConfirmPaymentRequest{
			TokenID:        tokenID,
			PaymentMethod:  tokenDomain.PaymentMethodCard,
			AmountReceived: &amount,
		}

		err := req.Validate()
		assert.Error(t, err)
	})
}

func TestConfirmPaymentRequest_ToConfirmInput(t *testing.T) {
	orderID := uuid.Must(uuid.NewV7())
	tokenID := uuid.Must(uuid.NewV7())
	txID := "tx-123"

	t.Run("Success", func(t *testing.T) {
		req := ConfirmPaymentRequest{
			TokenID:       tokenID.String(),
			PaymentMethod: tokenDomain.PaymentMethodCard,
			TransactionID: &txID,
		}

		input, err := req.ToConfirmInput(orderID)
		require.NoError(t, err)
		assert.Equal(t, orderID, input.OrderID)
		assert.Equal(t, tokenID, input.TokenID)
		assert.Equal(t, tokenDomain.PaymentMethodCard, input.PaymentMethod)
		assert.Equal(t, &txID, input.TransactionID)
	})

	t.Run("Error_MalformedTokenID", func(t *testing.T) {
		req := ConfirmPaymentRequest{
			TokenID:       "not-a-uuid",
			PaymentMethod: tokenDomain.PaymentMethodCard,
		}

		_, err := req.ToConfirmInput(orderID)
		assert.Error(t, err)
	})
}
