// Package usecase implements business logic orchestration for the payment-token protocol.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditUsecase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
	tokenService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/service"
)

// issuerUseCase implements IssuerUseCase.
type issuerUseCase struct {
	config    *config.Config
	txManager database.TxManager
	tokenRepo TokenRepository
	orderRepo OrderRepository
	signer    tokenService.TokenSigner
	generator tokenService.Generator
	recorder  auditUsecase.RecorderUseCase
}

// NewIssuerUseCase creates an IssuerUseCase with the provided dependencies.
func NewIssuerUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	tokenRepo TokenRepository,
	orderRepo OrderRepository,
	signer tokenService.TokenSigner,
	generator tokenService.Generator,
	recorder auditUsecase.RecorderUseCase,
) IssuerUseCase {
	return &issuerUseCase{
		config:    cfg,
		txManager: txManager,
		tokenRepo: tokenRepo,
		orderRepo: orderRepo,
		signer:    signer,
		generator: generator,
		recorder:  recorder,
	}
}

// Issue creates a token for the order, superseding any previously valid one.
func (i *issuerUseCase) Issue(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.Issuance, error) {
	return i.issue(ctx, orderID, device, auditDomain.ActionIssue)
}

// Regenerate replaces the order's token after expiry or loss.
func (i *issuerUseCase) Regenerate(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.Issuance, error) {
	return i.issue(ctx, orderID, device, auditDomain.ActionRegenerate)
}

func (i *issuerUseCase) issue(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
	action auditDomain.Action,
) (*tokenDomain.Issuance, error) {
	start := time.Now()

	order, err := i.orderRepo.Get(ctx, orderID)
	if err != nil {
		status := auditDomain.StatusFailed
		if errors.Is(err, orderDomain.ErrOrderNotFound) {
			status = auditDomain.StatusInvalid
		}
		i.audit(ctx, action, status, device, start, orderID, nil, err)
		return nil, err
	}

	if order.IsPaid() {
		i.audit(ctx, action, auditDomain.StatusFailed, device, start, orderID, nil, tokenDomain.ErrOrderAlreadyPaid)
		return nil, tokenDomain.ErrOrderAlreadyPaid
	}

	issuance, err := i.createToken(ctx, orderID)
	if err != nil {
		i.audit(ctx, action, auditDomain.StatusFailed, device, start, orderID, nil, err)
		return nil, err
	}

	i.audit(ctx, action, auditDomain.StatusSuccess, device, start, orderID, issuance, nil)

	return issuance, nil
}

// createToken generates token material and persists it, invalidating the
// order's previously valid tokens in the same transaction. Generation retries
// a bounded number of times on nonce or short-code collisions; a colliding
// value is never reused.
func (i *issuerUseCase) createToken(ctx context.Context, orderID uuid.UUID) (*tokenDomain.Issuance, error) {
	var issuance *tokenDomain.Issuance

	err := i.txManager.WithTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()

		if _, err := i.tokenRepo.InvalidateActiveForOrder(
			ctx, orderID, now, tokenDomain.UsedReasonSuperseded,
		); err != nil {
			return err
		}

		for attempt := 0; attempt < i.config.TokenGenerationMaxRetries; attempt++ {
			nonce, err := i.generator.Nonce()
			if err != nil {
				return err
			}

			shortCode, err := i.generator.ShortCode(i.config.TokenShortCodeLength)
			if err != nil {
				return err
			}

			tokenID := uuid.Must(uuid.NewV7())
			issuedAt := time.Now().UTC()
			expiresAt := issuedAt.Add(i.config.TokenTTL)

			signedToken, err := i.signer.Sign(&tokenDomain.Claims{
				TokenID: tokenID,
				OrderID: orderID,
				Nonce:   nonce,
			}, issuedAt, expiresAt)
			if err != nil {
				return err
			}

			token := &tokenDomain.Token{
				ID:        tokenID,
				OrderID:   orderID,
				Nonce:     nonce,
				ShortCode: shortCode,
				TokenHash: i.signer.HashToken(signedToken),
				IssuedAt:  issuedAt,
				ExpiresAt: expiresAt,
			}

			if err := i.tokenRepo.Create(ctx, token); err != nil {
				if apperrors.Is(err, apperrors.ErrConflict) {
					continue
				}
				return err
			}

			issuance = &tokenDomain.Issuance{
				TokenID:     tokenID,
				OrderID:     orderID,
				SignedToken: signedToken,
				ShortCode:   shortCode,
				IssuedAt:    issuedAt,
				ExpiresAt:   expiresAt,
			}
			return nil
		}

		return tokenDomain.ErrTokenGeneration
	})
	if err != nil {
		return nil, err
	}

	return issuance, nil
}

// CleanupExpired deletes token records older than the retention period.
func (i *issuerUseCase) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -i.config.TokenRetentionDays)
	return i.tokenRepo.DeleteIssuedBefore(ctx, cutoff)
}

func (i *issuerUseCase) audit(
	ctx context.Context,
	action auditDomain.Action,
	status auditDomain.Status,
	device *tokenDomain.DeviceContext,
	start time.Time,
	orderID uuid.UUID,
	issuance *tokenDomain.Issuance,
	cause error,
) {
	entry := auditEntry(action, status, device, start)
	entry.OrderID = optionalUUID(orderID)
	entry.ErrorMessage = errorMessage(cause)

	if issuance != nil {
		entry.TokenID = optionalUUID(issuance.TokenID)
		entry.ShortCode = optionalString(issuance.ShortCode)
	}

	i.recorder.Record(ctx, entry)
}
