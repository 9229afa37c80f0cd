// Package database provides connection setup and the transaction plumbing
// shared by the repository layer.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// txKey carries the active transaction through the context so repositories
// stay unaware of transaction boundaries.
type txKey struct{}

// Querier is the subset of *sql.DB and *sql.Tx the repositories use. Each
// repository method resolves one via GetTx, so the same query code runs
// inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function inside a single database transaction. The
// confirmation flow relies on it to commit token consumption, the order
// payment update and the outbox event together.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager backed by db.
func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

// WithTx begins a transaction, runs fn with the transaction stored in the
// context, and commits when fn returns nil. An error from fn rolls the
// transaction back and is returned unchanged.
func (m *txManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// GetTx returns the transaction stored in ctx, or db when none is active.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
