// Package repository provides data persistence implementations for audit entries.
package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

// PostgreSQLEntryRepository implements audit entry persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLEntryRepository struct {
	db *sql.DB
}

// NewPostgreSQLEntryRepository creates a new PostgreSQL audit entry repository.
func NewPostgreSQLEntryRepository(db *sql.DB) *PostgreSQLEntryRepository {
	return &PostgreSQLEntryRepository{db: db}
}

// Create appends a new audit entry. The security-event flag is computed at
// insert time so the monitoring queries stay index-friendly.
func (p *PostgreSQLEntryRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_entries (id, order_id, token_id, short_code, action, status,
				  error_message, device_id, device_type, terminal_id, user_id, user_role,
				  ip_address, payment_method, payment_amount, transaction_id,
				  processing_time_ms, scan_timestamp, signature, is_security_event)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.OrderID,
		entry.TokenID,
		entry.ShortCode,
		entry.Action,
		entry.Status,
		entry.ErrorMessage,
		entry.DeviceID,
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
func (p *PostgreSQLEntryRepository) CountSecurityEvents(
	ctx context.Context,
	since time.Time,
	filter auditDomain.SecurityEventFilter,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_entries
			  WHERE is_security_event = true
			    AND scan_timestamp >= $1
			    AND ($2::uuid IS NULL OR device_id = $2)
			    AND ($3::text IS NULL OR ip_address = $3)
			    AND ($4::uuid IS NULL OR order_id = $4)`

	var count int64
	err := querier.QueryRowContext(ctx, query, since, filter.DeviceID, filter.IPAddress, filter.OrderID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count security events")
	}
	return count, nil
}

// ListSecurityEvents returns security-event entries at or after since, newest first.
func (p *PostgreSQLEntryRepository) ListSecurityEvents(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, token_id, short_code, action, status, error_message,
				  device_id, device_type, terminal_id, user_id, user_role, ip_address,
				  payment_method, payment_amount, transaction_id, processing_time_ms,
				  scan_timestamp, signature
			  FROM audit_entries
			  WHERE is_security_event = true AND scan_timestamp >= $1
			  ORDER BY scan_timestamp DESC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	defer rows.Close() //nolint:errcheck

	var entries []*auditDomain.Entry
	for rows.Next() {
		var entry auditDomain.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.TokenID,
			&entry.ShortCode,
			&entry.Action,
			&entry.Status,
			&entry.ErrorMessage,
			&entry.DeviceID,
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
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}
