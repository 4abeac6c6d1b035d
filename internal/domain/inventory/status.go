package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DeriveStatus deriva el estado de stock a partir de cantidad y umbral mínimo
// (servicio de dominio, puro, sin I/O):
//
//	quantity == 0              → OUT_OF_STOCK
//	0 < quantity <= threshold  → LOW_STOCK
//	quantity > threshold       → IN_STOCK
func DeriveStatus(quantity, minThreshold decimal.Decimal) entity.StockStatus {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return entity.StatusOutOfStock
	}
	if quantity.LessThanOrEqual(minThreshold) {
		return entity.StatusLowStock
	}
	return entity.StatusInStock
}
