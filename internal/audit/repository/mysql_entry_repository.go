package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

// MySQLEntryRepository implements audit entry persistence for MySQL.
// UUIDs are stored as CHAR(36) strings with transaction support via database.GetTx().
type MySQLEntryRepository struct {
	db *sql.DB
}

// NewMySQLEntryRepository creates a new MySQL audit entry repository.
func NewMySQLEntryRepository(db *sql.DB) *MySQLEntryRepository {
	return &MySQLEntryRepository{db: db}
}

// Create appends a new audit entry.
func (m *MySQLEntryRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_entries (id, order_id, token_id, short_code, action, status,
				  error_message, device_id, device_type, terminal_id, user_id, user_role,
				  ip_address, payment_method, payment_amount, transaction_id,
				  processing_time_ms, scan_timestamp, signature, is_security_event)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID.String(),
		uuidPtrString(entry.OrderID),
		uuidPtrString(entry.TokenID),
		entry.ShortCode,
		entry.Action,
		entry.Status,
		entry.ErrorMessage,
		uuidPtrString(entry.DeviceID),
		entry.DeviceType,
		entry.TerminalID,
		entry.UserID,
		entry.UserRole,
		entry.IPAddress,
		entry.PaymentMethod,
		entry.PaymentAmount,
		entry.TransactionID,
		entry.ProcessingTimeMs,
		entry.ScanTimestamp,
		entry.Signature,
		entry.IsSecurityEvent(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}
	return nil
}

// CountSecurityEvents counts security-event entries at or after since,
// narrowed by the optional device, IP, and order filters.
func (m *MySQLEntryRepository) CountSecurityEvents(
	ctx context.Context,
	since time.Time,
	filter auditDomain.SecurityEventFilter,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM audit_entries
			  WHERE is_security_event = true
			    AND scan_timestamp >= ?
			    AND (? IS NULL OR device_id = ?)
			    AND (? IS NULL OR ip_address = ?)
			    AND (? IS NULL OR order_id = ?)`

	deviceID := uuidPtrString(filter.DeviceID)
	orderID := uuidPtrString(filter.OrderID)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		query,
		since,
		deviceID, deviceID,
		filter.IPAddress, filter.IPAddress,
		orderID, orderID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count security events")
	}
	return count, nil
}

// ListSecurityEvents returns security-event entries at or after since, newest first.
func (m *MySQLEntryRepository) ListSecurityEvents(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, token_id, short_code, action, status, error_message,
				  device_id, device_type, terminal_id, user_id, user_role, ip_address,
				  payment_method, payment_amount, transaction_id, processing_time_ms,
				  scan_timestamp, signature
			  FROM audit_entries
			  WHERE is_security_event = true AND scan_timestamp >= ?
			  ORDER BY scan_timestamp DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	defer rows.Close() //nolint:errcheck

	var entries []*auditDomain.Entry
	for rows.Next() {
		var entry auditDomain.Entry
		var id string
		var orderID, tokenID, deviceID sql.NullString

		err := rows.Scan(
			&id,
			&orderID,
			&tokenID,
			&entry.ShortCode,
			&entry.Action,
			&entry.Status,
			&entry.ErrorMessage,
			&deviceID,
			&entry.DeviceType,
			&entry.TerminalID,
			&entry.UserID,
			&entry.UserRole,
			&entry.IPAddress,
			&entry.PaymentMethod,
			&entry.PaymentAmount,
			&entry.TransactionID,
			&entry.ProcessingTimeMs,
			&entry.ScanTimestamp,
			&entry.Signature,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		if entry.ID, err = parseUUID(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse audit entry id")
		}
		if entry.OrderID, err = parseNullUUID(orderID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse audit entry order id")
		}
		if entry.TokenID, err = parseNullUUID(tokenID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse audit entry token id")
		}
		if entry.DeviceID, err = parseNullUUID(deviceID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse audit entry device id")
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}
