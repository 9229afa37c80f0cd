package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/metrics"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// issuerUseCaseWithMetrics decorates IssuerUseCase with metrics instrumentation.
type issuerUseCaseWithMetrics struct {
	next    IssuerUseCase
	metrics metrics.BusinessMetrics
}

// NewIssuerUseCaseWithMetrics wraps an IssuerUseCase with metrics recording.
func NewIssuerUseCaseWithMetrics(useCase IssuerUseCase, m metrics.BusinessMetrics) IssuerUseCase {
	return &issuerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance operations.
func (i *issuerUseCaseWithMetrics) Issue(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.Issuance, error) {
	start := time.Now()
	issuance, err := i.next.Issue(ctx, orderID, device)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "paymenttoken", "issue", status)
	i.metrics.RecordDuration(ctx, "paymenttoken", "issue", time.Since(start), status)

	return issuance, err
}

// Regenerate records metrics for token regeneration operations.
func (i *issuerUseCaseWithMetrics) Regenerate(
	ctx context.Context,
	orderID uuid.UUID,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.Issuance, error) {
	start := time.Now()
	issuance, err := i.next.Regenerate(ctx, orderID, device)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "paymenttoken", "regenerate", status)
	i.metrics.RecordDuration(ctx, "paymenttoken", "regenerate", time.Since(start), status)

	return issuance, err
}

// CleanupExpired records metrics for token cleanup operations.
func (i *issuerUseCaseWithMetrics) CleanupExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := i.next.CleanupExpired(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "paymenttoken", "cleanup_expired", status)
	i.metrics.RecordDuration(ctx, "paymenttoken", "cleanup_expired", time.Since(start), status)

	return removed, err
}

// scannerUseCaseWithMetrics decorates ScannerUseCase with metrics instrumentation.
type scannerUseCaseWithMetrics struct {
	next    ScannerUseCase
	metrics metrics.BusinessMetrics
}

// NewScannerUseCaseWithMetrics wraps a ScannerUseCase with metrics recording.
func NewScannerUseCaseWithMetrics(useCase ScannerUseCase, m metrics.BusinessMetrics) ScannerUseCase {
	return &scannerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Scan records metrics for scan operations.
func (s *scannerUseCaseWithMetrics) Scan(
	ctx context.Context,
	input *tokenDomain.ScanInput,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ScanResult, error) {
	start := time.Now()
	result, err := s.next.Scan(ctx, input, device)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "paymenttoken", "scan", status)
	s.metrics.RecordDuration(ctx, "paymenttoken", "scan", time.Since(start), status)

	return result, err
}

// confirmerUseCaseWithMetrics decorates ConfirmerUseCase with metrics instrumentation.
type confirmerUseCaseWithMetrics struct {
	next    ConfirmerUseCase
	metrics metrics.BusinessMetrics
}

// NewConfirmerUseCaseWithMetrics wraps a ConfirmerUseCase with metrics recording.
func NewConfirmerUseCaseWithMetrics(useCase ConfirmerUseCase, m metrics.BusinessMetrics) ConfirmerUseCase {
	return &confirmerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Confirm records metrics for payment confirmation operations.
func (c *confirmerUseCaseWithMetrics) Confirm(
	ctx context.Context,
	input *tokenDomain.ConfirmInput,
	device *tokenDomain.DeviceContext,
) (*tokenDomain.ConfirmResult, error) {
	start := time.Now()
	result, err := c.next.Confirm(ctx, input, device)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "paymenttoken", "confirm", status)
	c.metrics.RecordDuration(ctx, "paymenttoken", "confirm", time.Since(start), status)

	return result, err
}
