package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockTransactionRepository define el puerto de persistencia para el ledger
// append-only. Las transacciones nunca se actualizan ni se borran.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	// ListByItem lista transacciones de un ítem en orden ascendente de
	// CreatedAt (y de ID como desempate), con rango de fechas opcional.
	// El orden estable permite reconstruir el saldo reproduciendo deltas.
	ListByItem(ctx context.Context, ref entity.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error)
}
