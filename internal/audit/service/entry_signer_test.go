package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
)

func testEntry() *auditDomain.Entry {
	orderID := uuid.Must(uuid.NewV7())
	tokenID := uuid.Must(uuid.NewV7())
	shortCode := "ABC234"
	amount := 42.50

	return &auditDomain.Entry{
		ID:               uuid.Must(uuid.NewV7()),
		OrderID:          &orderID,
		TokenID:          &tokenID,
		ShortCode:        &shortCode,
		Action:           auditDomain.ActionConfirmPayment,
		Status:           auditDomain.StatusSuccess,
		PaymentAmount:    &amount,
		ProcessingTimeMs: 12,
		ScanTimestamp:    time.Now().UTC(),
	}
}

func TestEntrySigner_SignAndVerify(t *testing.T) {
	signer, err := NewEntrySigner([]byte("test-signing-key-needs-32-bytes!"))
	require.NoError(t, err)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		entry := testEntry()

		signature, err := signer.Sign(entry)
		require.NoError(t, err)
		require.NotEmpty(t, signature)
		entry.Signature = signature

		ok, err := signer.Verify(entry)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Success_Deterministic", func(t *testing.T) {
		entry := testEntry()

		first, err := signer.Sign(entry)
		require.NoError(t, err)

		second, err := signer.Sign(entry)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Success_NilOptionalsSign", func(t *testing.T) {
		entry := &auditDomain.Entry{
			ID:            uuid.Must(uuid.NewV7()),
			Action:        auditDomain.ActionScan,
			Status:        auditDomain.StatusInvalid,
			ScanTimestamp: time.Now().UTC(),
		}

		signature, err := signer.Sign(entry)
		require.NoError(t, err)
		entry.Signature = signature

		ok, err := signer.Verify(entry)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Error_TamperedFieldFailsVerification", func(t *testing.T) {
		entry := testEntry()

		signature, err := signer.Sign(entry)
		require.NoError(t, err)
		entry.Signature = signature

		entry.Status = auditDomain.StatusFailed

		ok, err := signer.Verify(entry)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Error_TamperedAmountFailsVerification", func(t *testing.T) {
		entry := testEntry()

		signature, err := signer.Sign(entry)
		require.NoError(t, err)
		entry.Signature = signature

		tampered := 999.99
		entry.PaymentAmount = &tampered

		ok, err := signer.Verify(entry)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Error_DifferentKeyFailsVerification", func(t *testing.T) {
		entry := testEntry()

		signature, err := signer.Sign(entry)
		require.NoError(t, err)
		entry.Signature = signature

		other, err := NewEntrySigner([]byte("another-signing-key-of-32-bytes!"))
		require.NoError(t, err)

		ok, err := other.Verify(entry)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
