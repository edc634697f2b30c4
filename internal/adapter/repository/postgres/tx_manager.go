package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/propledger/internal/infrastructure/postgres/generated"
	"github.com/iho/propledger/internal/usecase"
)

// ErrForeignTransaction is returned when a repository is handed a transaction it did not begin.
var ErrForeignTransaction = errors.New("transaction was not started by the postgres tx manager")

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. A bulk payment runs its invoice locks,
// payment inserts and paid-amount updates inside one Tx.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &Tx{tx: tx, queries: generated.New(tx)}, nil
}

// Tx is a pgx transaction with the generated queries bound to it.
type Tx struct {
	tx      pgx.Tx
	queries *generated.Queries
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back a committed transaction is a no-op, so
// callers can defer it unconditionally.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// txQueries returns the queries bound to a transaction begun by TxManager.
func txQueries(tx usecase.Transaction) (*generated.Queries, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignTransaction, tx)
	}
	return t.queries, nil
}
