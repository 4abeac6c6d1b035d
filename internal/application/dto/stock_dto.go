package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
// Delta lleva signo: positivo entrada, negativo consumo.
type AdjustStockRequest struct {
	ItemType string          `json:"item_type" validate:"required,oneof=material product tool"`
	ItemID   string          `json:"item_id" validate:"required"`
	Type     string          `json:"type" validate:"required,oneof=INITIAL INCREASE USAGE ADJUSTMENT RETURN"`
	Delta    decimal.Decimal `json:"delta"`
	Reason   string          `json:"reason" validate:"required,max=500"`
}

// SetThresholdRequest body para PUT /api/stock/:type/:id/threshold.
type SetThresholdRequest struct {
	MinThreshold decimal.Decimal `json:"min_threshold"`
}

// StockRecordResponse salida de un registro de stock.
type StockRecordResponse struct {
	ItemType     string          `json:"item_type"`
	ItemID       string          `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
	Status       string          `json:"status"`
	Retired      bool            `json:"retired,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockTransactionResponse salida de una transacción del ledger.
type StockTransactionResponse struct {
	ID        string          `json:"id"`
	ItemType  string          `json:"item_type"`
	ItemID    string          `json:"item_id"`
	Type      string          `json:"type"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StockHistoryPoint transacción más el saldo acumulado tras aplicarla, para
// reconstruir la curva de cantidad en el tiempo reproduciendo deltas.
type StockHistoryPoint struct {
	Transaction StockTransactionResponse `json:"transaction"`
	Balance     decimal.Decimal          `json:"balance"`
}
