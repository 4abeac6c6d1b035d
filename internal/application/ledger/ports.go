package ledger

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para cada ajuste del
// ledger: leer cantidad → calcular → escribir registro + transacción es un
// solo paso indivisible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.StockRecordRepository,
		txRepo repository.StockTransactionRepository,
	) error) error
}
