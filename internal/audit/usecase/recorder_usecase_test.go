package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/service"
)

type mockEntryRepository struct {
	mock.Mock
}

func (m *mockEntryRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockEntryRepository) CountSecurityEvents(ctx context.Context, since time.Time, filter auditDomain.SecurityEventFilter) (int64, error) {
	args := m.Called(ctx, since, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEntryRepository) ListSecurityEvents(ctx context.Context, since time.Time, limit int) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

func testRecorder(t *testing.T, entryRepo EntryRepository) RecorderUseCase {
	t.Helper()

	signer, err := auditService.NewEntrySigner([]byte("test-signing-key-needs-32-bytes!"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecorderUseCase(entryRepo, signer, logger)
}

func TestRecorderUseCase_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AssignsIdentityAndSignature", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		var stored *auditDomain.Entry
		entryRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Entry")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*auditDomain.Entry)
			}).
			Return(nil)

		recorder.Record(ctx, &auditDomain.Entry{
			Action: auditDomain.ActionScan,
			Status: auditDomain.StatusSuccess,
		})

		require.NotNil(t, stored)
		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.False(t, stored.ScanTimestamp.IsZero())
		assert.NotEmpty(t, stored.Signature)

		entryRepo.AssertExpectations(t)
	})

	t.Run("Success_KeepsCallerAssignedFields", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		entryID := uuid.Must(uuid.NewV7())
		scannedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

		entryRepo.On("Create", mock.Anything, mock.MatchedBy(func(entry *auditDomain.Entry) bool {
			return entry.ID == entryID && entry.ScanTimestamp.Equal(scannedAt)
		})).Return(nil)

		recorder.Record(ctx, &auditDomain.Entry{
			ID:            entryID,
			Action:        auditDomain.ActionIssue,
			Status:        auditDomain.StatusSuccess,
			ScanTimestamp: scannedAt,
		})

		entryRepo.AssertExpectations(t)
	})

	t.Run("Success_StorageFailureIsSwallowed", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		entryRepo.On("Create", mock.Anything, mock.Anything).
			Return(errors.New("database is down"))

		assert.NotPanics(t, func() {
			recorder.Record(ctx, &auditDomain.Entry{
				Action: auditDomain.ActionConfirmPayment,
				Status: auditDomain.StatusFailed,
			})
		})

		entryRepo.AssertExpectations(t)
	})

	t.Run("Success_SurvivesCancelledRequestContext", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		entryRepo.On("Create", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), mock.Anything).Return(nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		recorder.Record(cancelled, &auditDomain.Entry{
			Action: auditDomain.ActionScan,
			Status: auditDomain.StatusInvalid,
		})

		entryRepo.AssertExpectations(t)
	})
}

func TestRecorderUseCase_SecurityEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CountPassesWindowCutoff", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		window := 15 * time.Minute
		deviceID := uuid.Must(uuid.NewV7())
		filter := auditDomain.SecurityEventFilter{DeviceID: &deviceID}

		entryRepo.On("CountSecurityEvents", ctx, mock.MatchedBy(func(since time.Time) bool {
			return time.Since(since) > window-time.Minute && time.Since(since) < window+time.Minute
		}), filter).Return(int64(7), nil)

		count, err := recorder.SecurityEventCount(ctx, window, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)

		entryRepo.AssertExpectations(t)
	})

	t.Run("Error_CountRepositoryFailure", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		entryRepo.On("CountSecurityEvents", ctx, mock.Anything, mock.Anything).
			Return(int64(0), errors.New("database is down"))

		_, err := recorder.SecurityEventCount(ctx, time.Hour, auditDomain.SecurityEventFilter{})
		assert.ErrorContains(t, err, "failed to count security events")

		entryRepo.AssertExpectations(t)
	})

	t.Run("Success_RecentListsNewestFirst", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		entries := []*auditDomain.Entry{
			{ID: uuid.Must(uuid.NewV7()), Status: auditDomain.StatusInvalid},
			{ID: uuid.Must(uuid.NewV7()), Status: auditDomain.StatusExpired},
		}

		entryRepo.On("ListSecurityEvents", ctx, mock.Anything, 50).Return(entries, nil)

		got, err := recorder.RecentSecurityEvents(ctx, time.Hour, 50)
		require.NoError(t, err)
		assert.Equal(t, entries, got)

		entryRepo.AssertExpectations(t)
	})

	t.Run("Error_RecentRepositoryFailure", func(t *testing.T) {
		entryRepo := new(mockEntryRepository)
		recorder := testRecorder(t, entryRepo)

		entryRepo.On("ListSecurityEvents", ctx, mock.Anything, 10).
			Return(nil, errors.New("database is down"))

		_, err := recorder.RecentSecurityEvents(ctx, time.Hour, 10)
		assert.ErrorContains(t, err, "failed to list security events")

		entryRepo.AssertExpectations(t)
	})
}
