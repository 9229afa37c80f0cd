// Package repository provides data persistence implementations for payment tokens.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pqUniqueViolation = "23505"

// PostgreSQLTokenRepository implements payment token persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL payment token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new token record. Returns ErrConflict (wrapped) when the
// nonce or short code collides with an existing row, so the issuer can retry
// with fresh values.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO payment_tokens (id, order_id, nonce, short_code, token_hash,
				  issued_at, expires_at, used, used_at, used_by_user, used_by_device, used_reason)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.OrderID,
		token.Nonce,
		token.ShortCode,
		token.TokenHash,
		token.IssuedAt,
		token.ExpiresAt,
		token.Used,
		token.UsedAt,
		token.UsedByUser,
		token.UsedByDevice,
		token.UsedReason,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return apperrors.Wrap(apperrors.ErrConflict, "payment token uniqueness violation")
		}
		return apperrors.Wrap(err, "failed to create payment token")
	}
	return nil
}

// Get retrieves a token by ID. Returns ErrTokenNotFound if the token doesn't exist.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*tokenDomain.Token, error) {
	return p.getByColumn(ctx, "id", tokenID)
}

// GetByShortCode retrieves a token by its manual-entry code.
// Returns ErrTokenNotFound if no token matches.
func (p *PostgreSQLTokenRepository) GetByShortCode(
	ctx context.Context,
	shortCode string,
) (*tokenDomain.Token, error) {
	return p.getByColumn(ctx, "short_code", shortCode)
}

func (p *PostgreSQLTokenRepository) getByColumn(
	ctx context.Context,
	column string,
	value any,
) (*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, nonce, short_code, token_hash, issued_at, expires_at,
				  used, used_at, used_by_user, used_by_device, used_reason
			  FROM payment_tokens WHERE ` + column + ` = $1`

	var token tokenDomain.Token

	err := querier.QueryRowContext(ctx, query, value).Scan(
		&token.ID,
		&token.OrderID,
		&token.Nonce,
		&token.ShortCode,
		&token.TokenHash,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.Used,
		&token.UsedAt,
		&token.UsedByUser,
		&token.UsedByDevice,
		&token.UsedReason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get payment token")
	}

	return &token, nil
}

// MarkUsed atomically consumes a token with a conditional update. Returns true
// only when this call flipped the used flag; false means a concurrent caller
// consumed the token first. This compare-and-swap is the single arbiter of
// exactly-once confirmation.
func (p *PostgreSQLTokenRepository) MarkUsed(
	ctx context.Context,
	tokenID uuid.UUID,
	usedAt time.Time,
	usedByUser *string,
	usedByDevice *uuid.UUID,
	reason string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE payment_tokens
			  SET used = true, used_at = $1, used_by_user = $2, used_by_device = $3, used_reason = $4
			  WHERE id = $5 AND used = false`

	result, err := querier.ExecContext(ctx, query, usedAt, usedByUser, usedByDevice, reason, tokenID)
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
// with the given reason. Called during regeneration so at most one valid token
// exists per order. Returns the number of tokens invalidated.
func (p *PostgreSQLTokenRepository) InvalidateActiveForOrder(
	ctx context.Context,
	orderID uuid.UUID,
	usedAt time.Time,
	reason string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE payment_tokens
			  SET used = true, used_at = $1, used_reason = $2
			  WHERE order_id = $3 AND used = false`

	result, err := querier.ExecContext(ctx, query, usedAt, reason, orderID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to invalidate payment tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected, nil
}

// DeleteIssuedBefore removes token records issued before the cutoff. Storage
// hygiene only; correctness never depends on this sweep.
func (p *PostgreSQLTokenRepository) DeleteIssuedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM payment_tokens WHERE issued_at < $1`,
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
// Used by the cleanup command's dry-run mode.
func (p *PostgreSQLTokenRepository) CountIssuedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM payment_tokens WHERE issued_at < $1`,
		cutoff,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired payment tokens")
	}
	return count, nil
}
