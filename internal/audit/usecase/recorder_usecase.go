// Package usecase implements the audit recorder business logic.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/service"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

// EntryRepository defines persistence operations for audit entries.
// Entries are append-only; there is no update or delete operation.
type EntryRepository interface {
	// Create appends one audit entry.
	Create(ctx context.Context, entry *auditDomain.Entry) error

	// CountSecurityEvents counts security-event entries recorded at or after
	// since, narrowed by the filter.
	CountSecurityEvents(ctx context.Context, since time.Time, filter auditDomain.SecurityEventFilter) (int64, error)

	// ListSecurityEvents returns security-event entries recorded at or after
	// since, newest first, limited to limit rows.
	ListSecurityEvents(ctx context.Context, since time.Time, limit int) ([]*auditDomain.Entry, error)
}

// RecorderUseCase records protocol actions and serves the security-monitoring
// read side.
type RecorderUseCase interface {
	// Record appends one entry. It never fails the calling operation: storage
	// errors are logged and swallowed so the protocol outcome stands.
	Record(ctx context.Context, entry *auditDomain.Entry)

	// SecurityEventCount counts security events in the trailing window.
	SecurityEventCount(
		ctx context.Context,
		window time.Duration,
		filter auditDomain.SecurityEventFilter,
	) (int64, error)

	// RecentSecurityEvents lists security events in the trailing window, newest first.
	RecentSecurityEvents(ctx context.Context, window time.Duration, limit int) ([]*auditDomain.Entry, error)
}

// recorderUseCase implements RecorderUseCase.
type recorderUseCase struct {
	entryRepo EntryRepository
	signer    auditService.EntrySigner
	logger    *slog.Logger
}

// NewRecorderUseCase creates a RecorderUseCase with the provided dependencies.
func NewRecorderUseCase(
	entryRepo EntryRepository,
	signer auditService.EntrySigner,
	logger *slog.Logger,
) RecorderUseCase {
	return &recorderUseCase{
		entryRepo: entryRepo,
		signer:    signer,
		logger:    logger,
	}
}

// Record assigns identity and timestamp, signs the entry, and appends it.
// Runs detached from request cancellation so an aborted request still leaves
// its trace.
func (r *recorderUseCase) Record(ctx context.Context, entry *auditDomain.Entry) {
	ctx = context.WithoutCancel(ctx)

	if entry.ID == uuid.Nil {
		entry.ID = uuid.Must(uuid.NewV7())
	}
	if entry.ScanTimestamp.IsZero() {
		entry.ScanTimestamp = time.Now().UTC()
	}

	signature, err := r.signer.Sign(entry)
	if err != nil {
		r.logger.Error("failed to sign audit entry",
			slog.String("entry_id", entry.ID.String()),
			slog.Any("error", err),
		)
	} else {
		entry.Signature = signature
	}

	if err := r.entryRepo.Create(ctx, entry); err != nil {
		r.logger.Error("failed to record audit entry",
			slog.String("entry_id", entry.ID.String()),
			slog.String("action", string(entry.Action)),
			slog.String("status", string(entry.Status)),
			slog.Any("error", err),
		)
	}
}

// SecurityEventCount counts security events recorded within the trailing window.
func (r *recorderUseCase) SecurityEventCount(
	ctx context.Context,
	window time.Duration,
	filter auditDomain.SecurityEventFilter,
) (int64, error) {
	since := time.Now().UTC().Add(-window)

	count, err := r.entryRepo.CountSecurityEvents(ctx, since, filter)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count security events")
	}
	return count, nil
}

// RecentSecurityEvents lists security events recorded within the trailing window.
func (r *recorderUseCase) RecentSecurityEvents(
	ctx context.Context,
	window time.Duration,
	limit int,
) ([]*auditDomain.Entry, error) {
	since := time.Now().UTC().Add(-window)

	entries, err := r.entryRepo.ListSecurityEvents(ctx, since, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	return entries, nil
}
