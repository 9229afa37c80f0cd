package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
	outboxDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/domain"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// testConfig returns a configuration with the protocol settings tests rely on.
func testConfig() *config.Config {
	return &config.Config{
		TokenTTL:                  5 * time.Minute,
		TokenShortCodeLength:      6,
		TokenGenerationMaxRetries: 3,
		TokenRetentionDays:        7,
		PaymentAmountTolerance:    0.01,
	}
}

// mockTokenRepository is a mock implementation of TokenRepository for testing.
type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*tokenDomain.Token, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

func (m *mockTokenRepository) GetByShortCode(ctx context.Context, shortCode string) (*tokenDomain.Token, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

func (m *mockTokenRepository) MarkUsed(
	ctx context.Context,
	tokenID uuid.UUID,
	usedAt time.Time,
	usedByUser *string,
	usedByDevice *uuid.UUID,
	reason string,
) (bool, error) {
	args := m.Called(ctx, tokenID, usedAt, usedByUser, usedByDevice, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepository) InvalidateActiveForOrder(
	ctx context.Context,
	orderID uuid.UUID,
	usedAt time.Time,
	reason string,
) (int64, error) {
	args := m.Called(ctx, orderID, usedAt, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepository) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepository) CountIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// mockOrderRepository is a mock implementation of OrderRepository for testing.
type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Summary, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Summary), args.Error(1)
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, update orderDomain.PaymentUpdate) error {
	args := m.Called(ctx, orderID, update)
	return args.Error(0)
}

// mockOutboxEventRepository is a mock implementation of OutboxEventRepository for testing.
type mockOutboxEventRepository struct {
	mock.Mock
}

func (m *mockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// mockTokenSigner is a mock implementation of tokenService.TokenSigner for testing.
type mockTokenSigner struct {
	mock.Mock
}

func (m *mockTokenSigner) Sign(claims *tokenDomain.Claims, issuedAt, expiresAt time.Time) (string, error) {
	args := m.Called(claims, issuedAt, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *mockTokenSigner) Verify(signedToken string) (*tokenDomain.Claims, error) {
	args := m.Called(signedToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Claims), args.Error(1)
}

func (m *mockTokenSigner) HashToken(signedToken string) string {
	args := m.Called(signedToken)
	return args.String(0)
}

// mockGenerator is a mock implementation of tokenService.Generator for testing.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Nonce() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) ShortCode(length int) (string, error) {
	args := m.Called(length)
	return args.String(0), args.Error(1)
}

// capturingRecorder records entries in memory so tests can assert on the
// single entry written per protocol operation.
type capturingRecorder struct {
	mu      sync.Mutex
	entries []*auditDomain.Entry
}

func (r *capturingRecorder) Record(ctx context.Context, entry *auditDomain.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *capturingRecorder) SecurityEventCount(
	ctx context.Context,
	window time.Duration,
	filter auditDomain.SecurityEventFilter,
) (int64, error) {
	return 0, nil
}

func (r *capturingRecorder) RecentSecurityEvents(
	ctx context.Context,
	window time.Duration,
	limit int,
) ([]*auditDomain.Entry, error) {
	return nil, nil
}

func (r *capturingRecorder) Entries() []*auditDomain.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*auditDomain.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// passthroughTxManager runs the transactional function directly. Repository
// mocks don't care about transaction boundaries.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
