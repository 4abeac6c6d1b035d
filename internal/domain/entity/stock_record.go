package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus estado derivado de un registro de stock.
// Nunca lo fija el caller: siempre se recalcula tras cada mutación.
type StockStatus string

// Estados de stock válidos.
const (
	StatusInStock    StockStatus = "IN_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// StockRecord representa la cantidad actual en mano de un ítem rastreable.
// Invariantes: Quantity >= 0 y Status consistente con (Quantity, MinThreshold).
// Solo se muta a través del ledger; nunca se elimina físicamente mientras
// tenga historial (retiro lógico con Retired).
type StockRecord struct {
	ItemRef      ItemRef
	Quantity     decimal.Decimal // decimal: ítems por área usan fracciones, contables enteros
	MinThreshold decimal.Decimal
	Status       StockStatus
	Retired      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
