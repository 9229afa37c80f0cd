package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditUsecase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
	tokenService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/service"
)

// scannerUseCase implements ScannerUseCase.
type scannerUseCase struct {
	tokenRepo TokenRepository
	orderRepo OrderRepository
	signer    tokenService.TokenSigner
	recorder  auditUsecase.RecorderUseCase
}

// NewScannerUseCase creates a ScannerUseCase with the provided dependencies.
func NewScannerUseCase(
	tokenRepo TokenRepository,
	orderRepo OrderRepository,
	signer tokenService.TokenSigner,
	recorder auditUsecase.RecorderUseCase,
) ScannerUseCase {
	return &scannerUseCase{
		tokenRepo: tokenRepo,
		orderRepo: orderRepo,
		signer:    signer,
		recorder:  recorder,
	}
}

// Scan resolves a presented token, runs the validation chain, and returns the
// order summary. It never mutates the token: a valid token stays valid across
// any number of scans. Exactly one audit entry is recorded per call, matching
// the returned outcome.
func (s *scannerUseCase) Scan(
	ctx context.Context,
	input *tokenDomain.ScanInput,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ScanResult, error) {
	start := time.Now()

	token, err := s.resolveToken(ctx, input)
	if err != nil {
		s.audit(ctx, statusForError(err), device, start, token, input, nil, err)
		return nil, err
	}

	// Consumed wins over expired so a double scan of a settled order reads as
	// a duplicate, not a stale token.
	now := time.Now().UTC()
	if token.Used {
		s.audit(ctx, auditDomain.StatusDuplicate, device, start, token, input, nil, tokenDomain.ErrTokenUsed)
		return nil, tokenDomain.ErrTokenUsed
	}
	if !now.Before(token.ExpiresAt) {
		s.audit(ctx, auditDomain.StatusExpired, device, start, token, input, nil, tokenDomain.ErrTokenExpired)
		return nil, tokenDomain.ErrTokenExpired
	}

	order, err := s.orderRepo.Get(ctx, token.OrderID)
	if err != nil {
		s.audit(ctx, auditDomain.StatusFailed, device, start, token, input, nil, err)
		return nil, err
	}

	if order.IsPaid() {
		s.audit(ctx, auditDomain.StatusFailed, device, start, token, input, order, tokenDomain.ErrOrderAlreadyPaid)
		return nil, tokenDomain.ErrOrderAlreadyPaid
	}

	s.audit(ctx, auditDomain.StatusSuccess, device, start, token, input, order, nil)

	return &tokenDomain.ScanResult{
		TokenID:   token.ID,
		ShortCode: token.ShortCode,
		ExpiresAt: token.ExpiresAt,
		Order:     order,
	}, nil
}

// resolveToken looks up the token record behind the presented credential. The
// signed token wins when both forms are present. For a signed token the
// stored hash and nonce must match what was presented; a mismatch means
// substitution and is treated as invalid, not as not-found.
func (s *scannerUseCase) resolveToken(
	ctx context.Context,
	input *tokenDomain.ScanInput,
) (*tokenDomain.Token, error) {
	if input.SignedToken != "" {
		claims, err := s.signer.Verify(input.SignedToken)
		if err != nil {
			return nil, err
		}

		token, err := s.tokenRepo.Get(ctx, claims.TokenID)
		if err != nil {
			return nil, err
		}

		if token.TokenHash != s.signer.HashToken(input.SignedToken) ||
			token.Nonce != claims.Nonce ||
			token.OrderID != claims.OrderID {
			return token, tokenDomain.ErrTokenInvalid
		}

		return token, nil
	}

	shortCode := strings.ToUpper(strings.TrimSpace(input.ShortCode))
	if !tokenService.ValidShortCode(shortCode) {
		return nil, tokenDomain.ErrTokenInvalid
	}

	return s.tokenRepo.GetByShortCode(ctx, shortCode)
}

// statusForError maps a resolution failure to its audit status.
func statusForError(err error) auditDomain.Status {
	switch {
	case errors.Is(err, tokenDomain.ErrTokenExpired):
		return auditDomain.StatusExpired
	case errors.Is(err, tokenDomain.ErrTokenUsed):
		return auditDomain.StatusDuplicate
	case errors.Is(err, tokenDomain.ErrTokenNotFound), errors.Is(err, tokenDomain.ErrTokenInvalid):
		return auditDomain.StatusInvalid
	default:
		return auditDomain.StatusFailed
	}
}

func (s *scannerUseCase) audit(
	ctx context.Context,
	status auditDomain.Status,
	device *tokenDomain.DeviceContext,
	start time.Time,
	token *tokenDomain.Token,
	input *tokenDomain.ScanInput,
	order *orderDomain.Summary,
	cause error,
) {
	entry := auditEntry(auditDomain.ActionScan, status, device, start)
	entry.ErrorMessage = errorMessage(cause)

	if token != nil {
		entry.TokenID = optionalUUID(token.ID)
		entry.OrderID = optionalUUID(token.OrderID)
		entry.ShortCode = optionalString(token.ShortCode)
	} else if input != nil && input.ShortCode != "" {
		entry.ShortCode = optionalString(strings.ToUpper(strings.TrimSpace(input.ShortCode)))
	}

	if order != nil {
		entry.OrderID = optionalUUID(order.ID)
	}

	s.recorder.Record(ctx, entry)
}
