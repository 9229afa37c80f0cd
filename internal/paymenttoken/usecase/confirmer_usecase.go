package usecase

import (
	"context"
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditUsecase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	outboxDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// confirmerUseCase implements ConfirmerUseCase.
type confirmerUseCase struct {
	config     *config.Config
	txManager  database.TxManager
	tokenRepo  TokenRepository
	orderRepo  OrderRepository
	outboxRepo OutboxEventRepository
	recorder   auditUsecase.RecorderUseCase
}

// NewConfirmerUseCase creates a ConfirmerUseCase with the provided dependencies.
func NewConfirmerUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	tokenRepo TokenRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxEventRepository,
	recorder auditUsecase.RecorderUseCase,
) ConfirmerUseCase {
	return &confirmerUseCase{
		config:     cfg,
		txManager:  txManager,
		tokenRepo:  tokenRepo,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		recorder:   recorder,
	}
}

// Confirm settles the order against the token exactly once.
//
// The pre-checks outside the transaction give fast, accurate errors; the
// conditional update on the token inside the transaction is the single
// arbiter that decides which of N concurrent confirmations wins. The order
// update and the outbox event commit atomically with the token consumption,
// so a paid order always has a consumed token and a staged notification.
func (c *confirmerUseCase) Confirm(
	ctx context.Context,
	input *tokenDomain.ConfirmInput,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ConfirmResult, error) {
	start := time.Now()

	if !slices.Contains(tokenDomain.KnownPaymentMethods, input.PaymentMethod) {
		err := apperrors.Wrap(apperrors.ErrInvalidInput, "unknown payment method")
		c.audit(ctx, auditDomain.StatusFailed, device, start, input, nil, err)
		return nil, err
	}

	token, err := c.tokenRepo.Get(ctx, input.TokenID)
	if err != nil {
		c.audit(ctx, statusForError(err), device, start, input, nil, err)
		return nil, err
	}

	if token.OrderID != input.OrderID {
		c.audit(ctx, auditDomain.StatusInvalid, device, start, input, token, tokenDomain.ErrTokenInvalid)
		return nil, tokenDomain.ErrTokenInvalid
	}

	now := time.Now().UTC()
	if token.Used {
		c.audit(ctx, auditDomain.StatusDuplicate, device, start, input, token, tokenDomain.ErrTokenUsed)
		return nil, tokenDomain.ErrTokenUsed
	}
	if !now.Before(token.ExpiresAt) {
		c.audit(ctx, auditDomain.StatusExpired, device, start, input, token, tokenDomain.ErrTokenExpired)
		return nil, tokenDomain.ErrTokenExpired
	}

	order, err := c.orderRepo.Get(ctx, input.OrderID)
	if err != nil {
		c.audit(ctx, auditDomain.StatusFailed, device, start, input, token, err)
		return nil, err
	}

	if order.IsPaid() {
		c.audit(ctx, auditDomain.StatusFailed, device, start, input, token, tokenDomain.ErrOrderAlreadyPaid)
		return nil, tokenDomain.ErrOrderAlreadyPaid
	}

	if input.AmountReceived != nil &&
		math.Abs(*input.AmountReceived-order.TotalAmount) > c.config.PaymentAmountTolerance {
		c.audit(ctx, auditDomain.StatusFailed, device, start, input, token, tokenDomain.ErrAmountMismatch)
		return nil, tokenDomain.ErrAmountMismatch
	}

	result, err := c.settle(ctx, input, token, order, device)
	if err != nil {
		c.audit(ctx, statusForError(err), device, start, input, token, err)
		return nil, err
	}

	c.auditSuccess(ctx, device, start, result)

	return result, nil
}

// settle consumes the token, marks the order paid, and stages the
// payment-confirmed event in one transaction.
func (c *confirmerUseCase) settle(
	ctx context.Context,
	input *tokenDomain.ConfirmInput,
	token *tokenDomain.Token,
	order *orderDomain.Summary,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ConfirmResult, error) {
	var result *tokenDomain.ConfirmResult

	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		paidAt := time.Now().UTC()

		var usedByUser *string
		var usedByDevice *uuid.UUID
		if device != nil {
			usedByUser = optionalString(device.UserID)
			usedByDevice = optionalUUID(device.DeviceID)
		}

		consumed, err := c.tokenRepo.MarkUsed(
			ctx, token.ID, paidAt, usedByUser, usedByDevice, tokenDomain.UsedReasonConfirmed,
		)
		if err != nil {
			return err
		}
		if !consumed {
			return tokenDomain.ErrTokenUsed
		}

		if err := c.orderRepo.MarkPaid(ctx, order.ID, orderDomain.PaymentUpdate{
			PaymentMethod: input.PaymentMethod,
			TransactionID: input.TransactionID,
			PaidAt:        paidAt,
		}); err != nil {
			return err
		}

		confirmedBy := ""
		if device != nil {
			confirmedBy = device.UserID
		}

		payload, err := json.Marshal(outboxDomain.PaymentConfirmedPayload{
			OrderID:       order.ID,
			PaymentMethod: input.PaymentMethod,
			Amount:        order.TotalAmount,
			TransactionID: input.TransactionID,
			ConfirmedBy:   confirmedBy,
			ConfirmedAt:   paidAt,
		})
		if err != nil {
			return err
		}

		if err := c.outboxRepo.Create(ctx, &outboxDomain.Event{
			ID:        uuid.Must(uuid.NewV7()),
			EventType: outboxDomain.EventTypePaymentConfirmed,
			Payload:   string(payload),
			Status:    outboxDomain.EventStatusPending,
		}); err != nil {
			return err
		}

		result = &tokenDomain.ConfirmResult{
			OrderID:       order.ID,
			TokenID:       token.ID,
			PaymentMethod: input.PaymentMethod,
			AmountPaid:    order.TotalAmount,
			TransactionID: input.TransactionID,
			PaidAt:        paidAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *confirmerUseCase) audit(
	ctx context.Context,
	status auditDomain.Status,
	device *tokenDomain.DeviceContext,
	start time.Time,
	input *tokenDomain.ConfirmInput,
	token *tokenDomain.Token,
	cause error,
) {
	entry := auditEntry(auditDomain.ActionConfirmPayment, status, device, start)
	entry.OrderID = optionalUUID(input.OrderID)
	entry.TokenID = optionalUUID(input.TokenID)
	entry.PaymentMethod = optionalString(input.PaymentMethod)
	entry.PaymentAmount = input.AmountReceived
	entry.TransactionID = input.TransactionID
	entry.ErrorMessage = errorMessage(cause)

	if token != nil {
		entry.ShortCode = optionalString(token.ShortCode)
	}

	c.recorder.Record(ctx, entry)
}

func (c *confirmerUseCase) auditSuccess(
	ctx context.Context,
	device *tokenDomain.DeviceContext,
	start time.Time,
	result *tokenDomain.ConfirmResult,
) {
	entry := auditEntry(auditDomain.ActionConfirmPayment, auditDomain.StatusSuccess, device, start)
	entry.OrderID = optionalUUID(result.OrderID)
	entry.TokenID = optionalUUID(result.TokenID)
	entry.PaymentMethod = optionalString(result.PaymentMethod)
	entry.PaymentAmount = &result.AmountPaid
	entry.TransactionID = result.TransactionID

	c.recorder.Record(ctx, entry)
}
