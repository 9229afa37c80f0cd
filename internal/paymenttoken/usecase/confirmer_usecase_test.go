package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	databaseMocks "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database/mocks"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	outboxDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

func confirmInput(token *tokenDomain.Token) *tokenDomain.ConfirmInput {
	return &tokenDomain.ConfirmInput{
		OrderID:       token.OrderID,
		TokenID:       token.ID,
		PaymentMethod: tokenDomain.PaymentMethodCash,
	}
}

func TestConfirmerUseCase_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SettlesOrder", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		mockOutboxRepo := &mockOutboxEventRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		order := pendingOrder(orderID)
		device := testDeviceContext()

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(order, nil).Once()
		mockTokenRepo.On("MarkUsed",
			mock.Anything, token.ID, mock.Anything, mock.Anything, mock.Anything, tokenDomain.UsedReasonConfirmed,
		).Return(true, nil).Once()
		mockOrderRepo.On("MarkPaid", mock.Anything, orderID, mock.MatchedBy(func(update orderDomain.PaymentUpdate) bool {
			return update.PaymentMethod == tokenDomain.PaymentMethodCash
		})).Return(nil).Once()
		mockOutboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(event *outboxDomain.Event) bool {
			return event.EventType == outboxDomain.EventTypePaymentConfirmed &&
				event.Status == outboxDomain.EventStatusPending
		})).Return(nil).Once()

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, mockOrderRepo, mockOutboxRepo, recorder,
		)
		result, err := uc.Confirm(ctx, confirmInput(token), device)

		require.NoError(t, err)
		assert.Equal(t, orderID, result.OrderID)
		assert.Equal(t, token.ID, result.TokenID)
		assert.Equal(t, order.TotalAmount, result.AmountPaid)

		entries := recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, auditDomain.ActionConfirmPayment, entries[0].Action)
		assert.Equal(t, auditDomain.StatusSuccess, entries[0].Status)

		mockTokenRepo.AssertExpectations(t)
		mockOrderRepo.AssertExpectations(t)
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("Success_AmountWithinTolerance", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		mockOutboxRepo := &mockOutboxEventRepository{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		order := pendingOrder(orderID) // total 42.50

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(order, nil).Once()
		mockTokenRepo.On("MarkUsed", mock.Anything, token.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(true, nil).
			Once()
		mockOrderRepo.On("MarkPaid", mock.Anything, orderID, mock.Anything).Return(nil).Once()
		mockOutboxRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		input := confirmInput(token)
		amount := 42.505
		input.AmountReceived = &amount

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, mockOrderRepo, mockOutboxRepo, &capturingRecorder{},
		)
		_, err := uc.Confirm(ctx, input, testDeviceContext())

		assert.NoError(t, err)
	})

	t.Run("Error_AmountMismatch", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(pendingOrder(orderID), nil).Once()

		input := confirmInput(token)
		amount := 40.00
		input.AmountReceived = &amount

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, mockOrderRepo, &mockOutboxEventRepository{}, recorder,
		)
		result, err := uc.Confirm(ctx, input, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrAmountMismatch)
		assert.Nil(t, result)
		// The token is not consumed on a mismatch
		mockTokenRepo.AssertNotCalled(t, "MarkUsed")
	})

	t.Run("Error_UnknownPaymentMethod", func(t *testing.T) {
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		input := confirmInput(token)
		input.PaymentMethod = "BARTER"

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, &mockTokenRepository{}, &mockOrderRepository{}, &mockOutboxEventRepository{}, recorder,
		)
		_, err := uc.Confirm(ctx, input, testDeviceContext())

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_TokenOrderMismatch", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		recorder := &capturingRecorder{}

		token := validToken(uuid.Must(uuid.NewV7()))
		input := confirmInput(token)
		input.OrderID = uuid.Must(uuid.NewV7())

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, &mockOrderRepository{}, &mockOutboxEventRepository{}, recorder,
		)
		_, err := uc.Confirm(ctx, input, testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenInvalid)
	})

	t.Run("Error_TokenAlreadyUsed", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		token.Used = true

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, &mockOrderRepository{}, &mockOutboxEventRepository{}, recorder,
		)
		_, err := uc.Confirm(ctx, confirmInput(token), testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenUsed)

		entries := recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, auditDomain.StatusDuplicate, entries[0].Status)
	})

	t.Run("Error_LostRaceOnMarkUsed", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(pendingOrder(orderID), nil).Once()
		// Another confirmation consumed the token between the pre-check and
		// the conditional update.
		mockTokenRepo.On("MarkUsed", mock.Anything, token.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil).
			Once()

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, mockOrderRepo, &mockOutboxEventRepository{}, recorder,
		)
		_, err := uc.Confirm(ctx, confirmInput(token), testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenUsed)
		mockOrderRepo.AssertNotCalled(t, "MarkPaid")
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		token.ExpiresAt = time.Now().UTC().Add(-time.Second)

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()

		uc := NewConfirmerUseCase(
			testConfig(), passthroughTxManager{}, mockTokenRepo, &mockOrderRepository{}, &mockOutboxEventRepository{}, recorder,
		)
		_, err := uc.Confirm(ctx, confirmInput(token), testDeviceContext())

		assert.ErrorIs(t, err, tokenDomain.ErrTokenExpired)
	})

	t.Run("Error_TransactionFailure", func(t *testing.T) {
		mockTxManager := databaseMocks.NewMockTxManager(t)
		mockTokenRepo := &mockTokenRepository{}
		mockOrderRepo := &mockOrderRepository{}
		recorder := &capturingRecorder{}

		orderID := uuid.Must(uuid.NewV7())
		token := validToken(orderID)
		txErr := errors.New("deadlock detected")

		mockTokenRepo.On("Get", ctx, token.ID).Return(token, nil).Once()
		mockOrderRepo.On("Get", ctx, orderID).Return(pendingOrder(orderID), nil).Once()
		mockTxManager.EXPECT().
			WithTx(ctx, mock.AnythingOfType("func(context.Context) error")).
			Return(txErr).
			Once()

		uc := NewConfirmerUseCase(
			testConfig(), mockTxManager, mockTokenRepo, mockOrderRepo, &mockOutboxEventRepository{}, recorder,
		)
		_, err := uc.Confirm(ctx, confirmInput(token), testDeviceContext())

		assert.ErrorIs(t, err, txErr)
		mockOrderRepo.AssertNotCalled(t, "MarkPaid")
	})
}

// raceTokenStore is a stateful in-memory store whose MarkUsed performs the
// same conditional update a SQL repository would, so concurrent confirmations
// race against a single arbiter.
type raceTokenStore struct {
	mu    sync.Mutex
	token *tokenDomain.Token
}

func (s *raceTokenStore) Get(ctx context.Context, tokenID uuid.UUID) (*tokenDomain.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.token
	return &copied, nil
}

func (s *raceTokenStore) MarkUsed(
	ctx context.Context,
	tokenID uuid.UUID,
	usedAt time.Time,
	usedByUser *string,
	usedByDevice *uuid.UUID,
	reason string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token.Used {
		return false, nil
	}
	s.token.Used = true
	s.token.UsedAt = &usedAt
	s.token.UsedReason = &reason
	return true, nil
}

func (s *raceTokenStore) Create(ctx context.Context, token *tokenDomain.Token) error {
	return errors.New("not implemented")
}

func (s *raceTokenStore) GetByShortCode(ctx context.Context, shortCode string) (*tokenDomain.Token, error) {
	return nil, errors.New("not implemented")
}

func (s *raceTokenStore) InvalidateActiveForOrder(
	ctx context.Context, orderID uuid.UUID, usedAt time.Time, reason string,
) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *raceTokenStore) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *raceTokenStore) CountIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, errors.New("not implemented")
}

// raceOrderStore mirrors the paid flag so late confirmations observe the settled order.
type raceOrderStore struct {
	mu        sync.Mutex
	order     orderDomain.Summary
	paidCalls int
}

func (s *raceOrderStore) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := s.order
	return &copied, nil
}

func (s *raceOrderStore) MarkPaid(ctx context.Context, orderID uuid.UUID, update orderDomain.PaymentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.PaymentStatus = orderDomain.PaymentStatusPaid
	s.paidCalls++
	return nil
}

// raceOutboxStore counts staged events.
type raceOutboxStore struct {
	mu     sync.Mutex
	events []*outboxDomain.Event
}

func (s *raceOutboxStore) Create(ctx context.Context, event *outboxDomain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func TestConfirmerUseCase_Confirm_ExactlyOnce(t *testing.T) {
	ctx := context.Background()

	const attempts = 20

	orderID := uuid.Must(uuid.NewV7())
	token := validToken(orderID)

	tokenStore := &raceTokenStore{token: token}
	orderStore := &raceOrderStore{order: *pendingOrder(orderID)}
	outboxStore := &raceOutboxStore{}
	recorder := &capturingRecorder{}

	uc := NewConfirmerUseCase(
		testConfig(), passthroughTxManager{}, tokenStore, orderStore, outboxStore, recorder,
	)

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := uc.Confirm(ctx, confirmInput(token), testDeviceContext())
			results[idx] = err
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		// Losers observe either the consumed token or the already-settled order
		assert.True(t,
			errors.Is(err, tokenDomain.ErrTokenUsed) || errors.Is(err, tokenDomain.ErrOrderAlreadyPaid),
			"unexpected loser error: %v", err)
	}

	assert.Equal(t, 1, successes, "exactly one confirmation must win")
	assert.Equal(t, 1, orderStore.paidCalls, "the order is marked paid exactly once")
	assert.Len(t, outboxStore.events, 1, "exactly one payment event is staged")
	assert.Len(t, recorder.Entries(), attempts, "every attempt gets one audit entry")
}
