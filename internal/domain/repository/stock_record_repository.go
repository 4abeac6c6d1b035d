package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia para StockRecord (DIP).
// Get y GetForUpdate devuelven (nil, nil) si el ítem nunca fue inicializado.
type StockRecordRepository interface {
	Get(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error)
	// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE)
	// durante la transacción en curso.
	GetForUpdate(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error)
	Upsert(ctx context.Context, record *entity.StockRecord) error
	// ListLowStock devuelve los registros no retirados en LOW_STOCK y,
	// opcionalmente, también los OUT_OF_STOCK.
	ListLowStock(ctx context.Context, includeOutOfStock bool) ([]*entity.StockRecord, error)
}
