package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de movimiento del ledger de stock.
type TransactionType string

// Tipos de transacción válidos.
const (
	TransactionINITIAL    TransactionType = "INITIAL"    // alta inicial
	TransactionINCREASE   TransactionType = "INCREASE"   // entrada
	TransactionUSAGE      TransactionType = "USAGE"      // consumo (picking, producción)
	TransactionADJUSTMENT TransactionType = "ADJUSTMENT" // ajuste manual (+/-)
	TransactionRETURN     TransactionType = "RETURN"     // devolución al almacén
)

// Valid indica si el tipo de transacción es uno de los conocidos.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionINITIAL, TransactionINCREASE, TransactionUSAGE,
		TransactionADJUSTMENT, TransactionRETURN:
		return true
	}
	return false
}

// StockTransaction hecho inmutable de un cambio de cantidad (append-only).
// La suma de deltas por ItemRef en orden de CreatedAt debe igualar siempre
// StockRecord.Quantity: es la propiedad de corrección central del ledger.
type StockTransaction struct {
	ID        string
	ItemRef   ItemRef
	Type      TransactionType
	Delta     decimal.Decimal // con signo: positivo entrada, negativo consumo
	Reason    string
	CreatedBy string // UserID
	CreatedAt time.Time
}
