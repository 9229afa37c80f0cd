package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

type mockIssuerUseCase struct {
	mock.Mock
}

func (m *mockIssuerUseCase) Issue(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.Issuance, error) {
	args := m.Called(ctx, orderID, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Issuance), args.Error(1)
}

func (m *mockIssuerUseCase) Regenerate(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.Issuance, error) {
	args := m.Called(ctx, orderID, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Issuance), args.Error(1)
}

func (m *mockIssuerUseCase) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockScannerUseCase struct {
	mock.Mock
}

func (m *mockScannerUseCase) Scan(
	ctx context.Context,
	input *tokenDomain.ScanInput,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ScanResult, error) {
	args := m.Called(ctx, input, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.ScanResult), args.Error(1)
}

type mockConfirmerUseCase struct {
	mock.Mock
}

func (m *mockConfirmerUseCase) Confirm(
	ctx context.Context,
	input *tokenDomain.ConfirmInput,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ConfirmResult, error) {
	args := m.Called(ctx, input, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.ConfirmResult), args.Error(1)
}

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func TestIssuerUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())

	t.Run("Issue success", func(t *testing.T) {
		next := &mockIssuerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewIssuerUseCaseWithMetrics(next, m)

		next.On("Issue", ctx, orderID, (*tokenDomain.DeviceContext)(nil)).
			Return(&tokenDomain.Issuance{OrderID: orderID}, nil).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "issue", "success").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "issue",
			mock.AnythingOfType("time.Duration"), "success").Return().Once()

		_, err := uc.Issue(ctx, orderID, nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Issue error", func(t *testing.T) {
		next := &mockIssuerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewIssuerUseCaseWithMetrics(next, m)

		next.On("Issue", ctx, orderID, (*tokenDomain.DeviceContext)(nil)).
			Return(nil, errors.New("order not found")).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "issue", "error").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "issue",
			mock.AnythingOfType("time.Duration"), "error").Return().Once()

		_, err := uc.Issue(ctx, orderID, nil)

		if err == nil {
			t.Fatal("expected error")
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Regenerate success", func(t *testing.T) {
		next := &mockIssuerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewIssuerUseCaseWithMetrics(next, m)

		next.On("Regenerate", ctx, orderID, (*tokenDomain.DeviceContext)(nil)).
			Return(&tokenDomain.Issuance{OrderID: orderID}, nil).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "regenerate", "success").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "regenerate",
			mock.AnythingOfType("time.Duration"), "success").Return().Once()

		_, err := uc.Regenerate(ctx, orderID, nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("CleanupExpired success", func(t *testing.T) {
		next := &mockIssuerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewIssuerUseCaseWithMetrics(next, m)

		next.On("CleanupExpired", ctx).Return(int64(3), nil).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "cleanup_expired", "success").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "cleanup_expired",
			mock.AnythingOfType("time.Duration"), "success").Return().Once()

		removed, err := uc.CleanupExpired(ctx)

		if err != nil || removed != 3 {
			t.Fatalf("unexpected result: %d, %v", removed, err)
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}

func TestScannerUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Scan success", func(t *testing.T) {
		next := &mockScannerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewScannerUseCaseWithMetrics(next, m)

		input := &tokenDomain.ScanInput{ShortCode: "ABC234"}

		next.On("Scan", ctx, input, (*tokenDomain.DeviceContext)(nil)).
			Return(&tokenDomain.ScanResult{ShortCode: "ABC234"}, nil).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "scan", "success").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "scan",
			mock.AnythingOfType("time.Duration"), "success").Return().Once()

		_, err := uc.Scan(ctx, input, nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Scan error", func(t *testing.T) {
		next := &mockScannerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewScannerUseCaseWithMetrics(next, m)

		input := &tokenDomain.ScanInput{ShortCode: "ABC234"}

		next.On("Scan", ctx, input, (*tokenDomain.DeviceContext)(nil)).
			Return(nil, tokenDomain.ErrTokenExpired).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "scan", "error").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "scan",
			mock.AnythingOfType("time.Duration"), "error").Return().Once()

		_, err := uc.Scan(ctx, input, nil)

		if err == nil {
			t.Fatal("expected error")
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}

func TestConfirmerUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Confirm success", func(t *testing.T) {
		next := &mockConfirmerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewConfirmerUseCaseWithMetrics(next, m)

		input := &tokenDomain.ConfirmInput{
			OrderID: uuid.Must(uuid.NewV7()),
			TokenID: uuid.Must(uuid.NewV7()),
		}

		next.On("Confirm", ctx, input, (*tokenDomain.DeviceContext)(nil)).
			Return(&tokenDomain.ConfirmResult{OrderID: input.OrderID}, nil).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "confirm", "success").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "confirm",
			mock.AnythingOfType("time.Duration"), "success").Return().Once()

		_, err := uc.Confirm(ctx, input, nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Confirm error", func(t *testing.T) {
		next := &mockConfirmerUseCase{}
		m := &mockBusinessMetrics{}
		uc := NewConfirmerUseCaseWithMetrics(next, m)

		input := &tokenDomain.ConfirmInput{
			OrderID: uuid.Must(uuid.NewV7()),
			TokenID: uuid.Must(uuid.NewV7()),
		}

		next.On("Confirm", ctx, input, (*tokenDomain.DeviceContext)(nil)).
			Return(nil, tokenDomain.ErrTokenUsed).Once()
		m.On("RecordOperation", ctx, "paymenttoken", "confirm", "error").Return().Once()
		m.On("RecordDuration", ctx, "paymenttoken", "confirm",
			mock.AnythingOfType("time.Duration"), "error").Return().Once()

		_, err := uc.Confirm(ctx, input, nil)

		if err == nil {
			t.Fatal("expected error")
		}
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}
