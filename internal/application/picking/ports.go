package picking

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de picking y de stock atados a esa tx. Cada pick corre en su
// propia unidad de trabajo: la fila de la lista se bloquea primero y después
// la del stock, así dos procesos concurrentes sobre la misma lista se
// serializan y los picks ya confirmados sobreviven a fallos posteriores.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		listRepo repository.PickingListRepository,
		recordRepo repository.StockRecordRepository,
		txRepo repository.StockTransactionRepository,
	) error) error
}

// SheetGenerator genera la hoja de picking imprimible (PDF) para bodega.
type SheetGenerator interface {
	GeneratePickingSheet(ctx context.Context, list *entity.PickingList) ([]byte, error)
}
