package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PickingListStatus estado del ciclo de vida de un picking list.
// DRAFT → IN_PROGRESS → COMPLETED, sin retroceso desde COMPLETED.
type PickingListStatus string

// Estados válidos de un picking list.
const (
	PickingDraft      PickingListStatus = "DRAFT"
	PickingInProgress PickingListStatus = "IN_PROGRESS"
	PickingCompleted  PickingListStatus = "COMPLETED"
)

// SourceType origen de un picking list.
type SourceType string

// Orígenes válidos.
const (
	SourceProject    SourceType = "project"
	SourceSalesOrder SourceType = "sales_order"
)

// SourceRef referencia al proyecto u orden de venta que originó el picking list.
type SourceRef struct {
	Type SourceType
	ID   string
}

// String representación "tipo:id".
func (s SourceRef) String() string {
	return string(s.Type) + ":" + s.ID
}

// PickingList unidad de trabajo que solicita materiales para un proyecto u
// orden de venta. Es dueño exclusivo de sus Items (ciclo de vida en cascada);
// referencia materiales por ItemRef, nunca cantidades de stock directamente.
// Invariante: Status == COMPLETED sii todos los items tienen Picked == Ordered.
// Una vez COMPLETED, lista e items son inmutables.
type PickingList struct {
	ID          string
	SourceRef   SourceRef
	Status      PickingListStatus
	CreatedBy   string
	CreatedAt   time.Time
	CompletedAt *time.Time
	Items       []*PickingListItem
}

// PickingListItem línea de un picking list para un material requerido.
// Invariante: 0 <= QuantityPicked <= QuantityOrdered.
type PickingListItem struct {
	ID              string
	ListID          string
	MaterialRef     ItemRef
	ComponentID     string // componente del BOM que originó la línea (opcional)
	QuantityOrdered decimal.Decimal
	QuantityPicked  decimal.Decimal
	Note            string
}

// Remaining cantidad pendiente por pickear en la línea.
func (i *PickingListItem) Remaining() decimal.Decimal {
	return i.QuantityOrdered.Sub(i.QuantityPicked)
}

// FullyPicked indica si la línea ya quedó completa.
func (i *PickingListItem) FullyPicked() bool {
	return i.QuantityPicked.GreaterThanOrEqual(i.QuantityOrdered)
}

// AllItemsPicked indica si todas las líneas de la lista están completas.
// Una lista sin items nunca se considera completa.
func (l *PickingList) AllItemsPicked() bool {
	if len(l.Items) == 0 {
		return false
	}
	for _, item := range l.Items {
		if !item.FullyPicked() {
			return false
		}
	}
	return true
}

// ItemByID busca una línea por su ID; nil si no existe en la lista.
func (l *PickingList) ItemByID(itemID string) *PickingListItem {
	for _, item := range l.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}
