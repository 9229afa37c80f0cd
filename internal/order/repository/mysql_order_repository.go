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

// MySQLOrderRepository implements the order boundary for MySQL.
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQL order repository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Get retrieves the payment summary of an order.
// Returns ErrOrderNotFound if the order doesn't exist.
func (m *MySQLOrderRepository) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Summary, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_number, total_amount, payment_status, created_at
			  FROM orders WHERE id = ?`

	var summary orderDomain.Summary
	var id string

	err := querier.QueryRowContext(ctx, query, orderID.String()).Scan(
		&id,
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

	if summary.ID, err = uuid.Parse(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse order id")
	}

	return &summary, nil
}

// MarkPaid writes the payment fields of a confirmed order.
// Returns ErrOrderNotFound if the order doesn't exist.
func (m *MySQLOrderRepository) MarkPaid(
	ctx context.Context,
	orderID uuid.UUID,
	update orderDomain.PaymentUpdate,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders
			  SET payment_status = ?, payment_method = ?, transaction_id = ?, paid_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		orderDomain.PaymentStatusPaid,
		update.PaymentMethod,
		update.TransactionID,
		update.PaidAt,
		orderID.String(),
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
