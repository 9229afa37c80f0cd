package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

func validToken(orderID uuid.UUID) *tokenDomain.Token {
	return &tokenDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		OrderID:   orderID,
		Nonce:     "nonce-value",
		ShortCode: "ABC234",
		TokenHash: "token-hash",
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	}
}

func TestScannerUseCase_Scan_SignedToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ValidToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: token.Nonce}

		mockSigner.On("Verify", "signed.jwt.token").Return(claims, nil).Once()
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockSigner.On("HashToken", "signed.jwt.token").Return(token.TokenHash).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(pendingOrder(orderID), nil).Once()

		uc := NewScannerUseCase(mockTokenRepo, mockOrderRepo, mockSigner, recorder)
		result, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "signed.jwt.token"}, testDeviceContext())

		require.NoError(t, err)
		assert.Equal(t, token.ID, result.TokenID)
		assert.Equal(t, token.ShortCode, result.ShortCode)
		assert.Equal(t, orderID, result.Order.ID)

		entries := recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, auditDomain.ActionScan, entries[0].Action)
		assert.Equal(t, auditDomain.StatusSuccess, entries[0].Status)
	})

	t.Run("Success_RepeatScansDoNotConsume", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: token.Nonce}

		mockSigner.On("Verify", "signed.jwt.token").Return(claims, nil).Times(3)
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Times(3)
		mockSigner.On("HashToken", "signed.jwt.token").Return(token.TokenHash).Times(3)
		mockOrderRepo.On("Get", ctx, orderID).Return(pendingOrder(orderID), nil).Times(3)

		uc := NewScannerUseCase(mockTokenRepo, mockOrderRepo, mockSigner, recorder)
		for i := 0; i < 3; i++ {
			result, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "signed.jwt.token"}, testDeviceContext())
			require.NoError(t, err)
			assert.Equal(t, token.ID, result.TokenID)
		}

		// MarkUsed is never called on the scan path
		mockTokenRepo.AssertNotCalled(t, "MarkUsed")
		assert.Len(t, recorder.Entries(), 3)
	})

	t.Run("Error_HashMismatchIsInvalid", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: token.Nonce}

		mockSigner.On("Verify", "substituted.jwt.token").Return(claims, nil).Once()
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockSigner.On("HashToken", "substituted.jwt.token").Return("some-other-hash").Once()

		uc := NewScannerUseCase(mockTokenRepo, &mockOrderRepository{}, mockSigner, recorder)
		result, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "substituted.jwt.token"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenInvalid)
		assert.Nil(t, result)

		entries := recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, auditDomain.StatusInvalid, entries[0].Status)
		assert.True(t, entries[0].IsSecurityEvent())
	})

	t.Run("Error_NonceMismatchIsInvalid", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: "different-nonce"}

		mockSigner.On("Verify", "signed.jwt.token").Return(claims, nil).Once()
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockSigner.On("HashToken", "signed.jwt.token").Return(token.TokenHash).Once()

		uc := NewScannerUseCase(mockTokenRepo, &mockOrderRepository{}, mockSigner, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "signed.jwt.token"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenInvalid)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		token.ExpiresAt = time.Now().UTC().Add(-time.Second)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: token.Nonce}

		mockSigner.On("Verify", "signed.jwt.token").Return(claims, nil).Once()
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockSigner.On("HashToken", "signed.jwt.token").Return(token.TokenHash).Once()

		uc := NewScannerUseCase(mockTokenRepo, &mockOrderRepository{}, mockSigner, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "signed.jwt.token"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenExpired)

		entries := recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, auditDomain.StatusExpired, entries[0].Status)
	})

	t.Run("Error_UsedWinsOverExpired", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		token.Used = true
		token.ExpiresAt = time.Now().UTC().Add(-time.Hour)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: token.Nonce}

		mockSigner.On("Verify", "signed.jwt.token").Return(claims, nil).Once()
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockSigner.On("HashToken", "signed.jwt.token").Return(token.TokenHash).Once()

		uc := NewScannerUseCase(mockTokenRepo, &mockOrderRepository{}, mockSigner, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "signed.jwt.token"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenUsed)

		entries := recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, auditDomain.StatusDuplicate, entries[0].Status)
	})

	t.Run("Error_OrderAlreadyPaid", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		claims := &tokenDomain.Claims{TokenID: token.ID, OrderID: orderID, Nonce: token.Nonce}
		paid := pendingOrder(orderID)
		paid.PaymentStatus = orderDomain.PaymentStatusPaid

		mockSigner.On("Verify", "signed.jwt.token").Return(claims, nil).Once()
		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockSigner.On("HashToken", "signed.jwt.token").Return(token.TokenHash).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(paid, nil).Once()

		uc := NewScannerUseCase(mockTokenRepo, mockOrderRepo, mockSigner, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "signed.jwt.token"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrOrderAlreadyPaid)
	})

	t.Run("Error_VerificationFailure", func(t *testing.T) {
		mockSigner := &mockTokenSigner{}
		recorder := &capturingRecorder{}

		mockSigner.On("Verify", "garbage").Return(nil, tokenDomain.ErrTokenInvalid).Once()

		uc := NewScannerUseCase(&mockTokenRepository{}, &mockOrderRepository{}, mockSigner, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{SignedToken: "garbage"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenInvalid)
	})
}

func TestScannerUseCase_Scan_ShortCode(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NormalizesCode", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)

		mockTokenRepo.On("GetByShortCode", ctx, "ABC234").Return(token, nil).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(pendingOrder(orderID), nil).Once()

		uc := NewScannerUseCase(mockTokenRepo, mockOrderRepo, &mockTokenSigner{}, recorder)
		result, err := uc.Scan(ctx, &tokenDomain.ScanInput{ShortCode: " abc234 "}, testDeviceContext())

		require.NoError(t, err)
		assert.Equal(t, token.ID, result.TokenID)
	})

	t.Run("Error_MalformedCode", func(t *testing.T) {
		recorder := &capturingRecorder{}

		uc := NewScannerUseCase(&mockTokenRepository{}, &mockOrderRepository{}, &mockTokenSigner{}, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{ShortCode: "AB-12"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenInvalid)
	})

	t.Run("Error_UnknownCode", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		recorder := &capturingRecorder{}

		mockTokenRepo.On("GetByShortCode", ctx, "ZZZZZZ").Return(nil, tokenDomain.ErrTokenNotFound).Once()

		uc := NewScannerUseCase(mockTokenRepo, &mockOrderRepository{}, &mockTokenSigner{}, recorder)
		_, err := uc.Scan(ctx, &tokenDomain.ScanInput{ShortCode: "ZZZZZZ"}, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
	})
}
