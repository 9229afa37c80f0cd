// Package repository provides the narrow order persistence used by payment confirmation.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	orderDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/domain"
)

// PostgreSQLOrderRepository implements the order boundary for PostgreSQL.
// Only the payment-relevant projection of the orders table is touched here;
// order CRUD belongs to the order-management service.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQL order repository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Get retrieves the payment summary of an order.
// Returns ErrOrderNotFound if the order doesn't exist.
func (p *PostgreSQLOrderRepository) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Summary, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_number, total_amount, payment_status, created_at
			  FROM orders WHERE id = $1`

	var summary orderDomain.Summary

	err := querier.QueryRowContext(ctx, query, orderID).Scan(
		&summary.ID,
		&summary.OrderNumber,
		&summary.TotalAmount,
		&summary.PaymentStatus,
		&summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderDomain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order")
	}

	return &summary, nil
}

// MarkPaid writes the payment fields of a confirmed order.
// Returns ErrOrderNotFound if the order doesn't exist.
func (p *PostgreSQLOrderRepository) MarkPaid(
	ctx context.Context,
	orderID uuid.UUID,
	update orderDomain.PaymentUpdate,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders
			  SET payment_status = $1, payment_method = $2, transaction_id = $3, paid_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		orderDomain.PaymentStatusPaid,
		update.PaymentMethod,
		update.TransactionID,
		update.PaidAt,
		orderID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark order paid")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return orderDomain.ErrOrderNotFound
	}
	return nil
}
