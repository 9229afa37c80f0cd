package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// mysqlDuplicateEntry is the MySQL error number for duplicate key violations.
const mysqlDuplicateEntry = 1062

// MySQLTokenRepository implements payment token persistence for MySQL.
// UUIDs are stored as CHAR(36) strings with transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL payment token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a new token record. Returns ErrConflict (wrapped) when the
// nonce or short code collides with an existing row.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO payment_tokens (id, order_id, nonce, short_code, token_hash,
				  issued_at, expires_at, used, used_at, used_by_user, used_by_device, used_reason)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var usedByDevice *string
	if token.UsedByDevice != nil {
		s := token.UsedByDevice.String()
		usedByDevice = &s
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID.String(),
		token.OrderID.String(),
		token.Nonce,
		token.ShortCode,
		token.TokenHash,
		token.IssuedAt,
		token.ExpiresAt,
		token.Used,
		token.UsedAt,
		token.UsedByUser,
		usedByDevice,
		token.UsedReason,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperrors.Wrap(apperrors.ErrConflict, "payment token uniqueness violation")
		}
		return apperrors.Wrap(err, "failed to create payment token")
	}
	return nil
}

// Get retrieves a token by ID. Returns ErrTokenNotFound if the token doesn't exist.
func (m *MySQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*tokenDomain.Token, error) {
	return m.getByColumn(ctx, "id", tokenID.String())
}

// GetByShortCode retrieves a token by its manual-entry code.
// Returns ErrTokenNotFound if no token matches.
func (m *MySQLTokenRepository) GetByShortCode(
	ctx context.Context,
	shortCode string,
) (*tokenDomain.Token, error) {
	return m.getByColumn(ctx, "short_code", shortCode)
}

func (m *MySQLTokenRepository) getByColumn(
	ctx context.Context,
	column string,
	value any,
) (*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, nonce, short_code, token_hash, issued_at, expires_at,
				  used, used_at, used_by_user, used_by_device, used_reason
			  FROM payment_tokens WHERE ` + column + ` = ?`

	var token tokenDomain.Token
	var id, orderID string
	var usedByDevice sql.NullString

	err := querier.QueryRowContext(ctx, query, value).Scan(
		&id,
		&orderID,
		&token.Nonce,
		&token.ShortCode,
		&token.TokenHash,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.Used,
		&token.UsedAt,
		&token.UsedByUser,
		&usedByDevice,
		&token.UsedReason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get payment token")
	}

	if token.ID, err = uuid.Parse(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse payment token id")
	}
	if token.OrderID, err = uuid.Parse(orderID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse payment token order id")
	}
	if usedByDevice.Valid {
		deviceID, err := uuid.Parse(usedByDevice.String)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse payment token device id")
		}
		token.UsedByDevice = &deviceID
	}

	return &token, nil
}

// MarkUsed atomically consumes a token with a conditional update. Returns true
// only when this call flipped the used flag.
func (m *MySQLTokenRepository) MarkUsed(
	ctx context.Context,
	tokenID uuid.UUID,
	usedAt time.Time,
	usedByUser *string,
	usedByDevice *uuid.UUID,
	reason string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE payment_tokens
			  SET used = true, used_at = ?, used_by_user = ?, used_by_device = ?, used_reason = ?
			  WHERE id = ? AND used = false`

	var deviceID *string
	if usedByDevice != nil {
		s := usedByDevice.String()
		deviceID = &s
	}

	result, err := querier.ExecContext(ctx, query, usedAt, usedByUser, deviceID, reason, tokenID.String())
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark payment token used")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected == 1, nil
}

// InvalidateActiveForOrder marks every not-yet-used token of the order as used
// with the given reason. Returns the number of tokens invalidated.
func (m *MySQLTokenRepository) InvalidateActiveForOrder(
	ctx context.Context,
	orderID uuid.UUID,
	usedAt time.Time,
	reason string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE payment_tokens
			  SET used = true, used_at = ?, used_reason = ?
			  WHERE order_id = ? AND used = false`

	result, err := querier.ExecContext(ctx, query, usedAt, reason, orderID.String())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to invalidate payment tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected, nil
}

// DeleteIssuedBefore removes token records issued before the cutoff.
func (m *MySQLTokenRepository) DeleteIssuedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM payment_tokens WHERE issued_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired payment tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected, nil
}

// CountIssuedBefore counts token records issued before the cutoff.
func (m *MySQLTokenRepository) CountIssuedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM payment_tokens WHERE issued_at < ?`,
		cutoff,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired payment tokens")
	}
	return count, nil
}
