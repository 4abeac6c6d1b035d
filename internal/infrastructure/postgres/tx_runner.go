package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/picking"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and picking.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ picking.TxRunner = (*PickingTxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los
// repositorios del ledger atados a esa tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	recordRepo := NewStockRecordRepository(tx)
	txRepo := NewStockTransactionRepository(tx)

	if err := fn(recordRepo, txRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PickingTxRunner igual que TxRunner pero entrega además el repositorio de
// picking lists, para las unidades de trabajo del procesador de fulfillment.
type PickingTxRunner struct {
	pool *pgxpool.Pool
}

// NewPickingTxRunner construye el runner con el pool.
func NewPickingTxRunner(pool *pgxpool.Pool) *PickingTxRunner {
	return &PickingTxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *PickingTxRunner) Run(ctx context.Context, fn func(
	listRepo repository.PickingListRepository,
	recordRepo repository.StockRecordRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listRepo := NewPickingListRepository(tx)
	recordRepo := NewStockRecordRepository(tx)
	txRepo := NewStockTransactionRepository(tx)

	if err := fn(listRepo, recordRepo, txRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
