package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePickingListRequest body para POST /api/picking-lists/from-project.
type CreatePickingListRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
}

// PickRequestItem una petición de picking sobre una línea de la lista.
type PickRequestItem struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ProcessPickingRequest body para POST /api/picking-lists/:id/process.
type ProcessPickingRequest struct {
	Picks []PickRequestItem `json:"picks" validate:"required,min=1"`
}

// Resultados posibles de una línea tras procesar un batch de picks.
const (
	PickOutcomeFulfilled = "FULFILLED" // se descontó todo lo pedido
	PickOutcomePartial   = "PARTIAL"   // stock insuficiente: se descontó el máximo disponible
	PickOutcomeRejected  = "REJECTED"  // petición inválida: se omitió la línea con nota
)

// PickResult resultado discriminado de un pick individual dentro del batch.
// Un batch nunca responde con un booleano único: cada línea reporta su destino.
type PickResult struct {
	ItemID    string          `json:"item_id"`
	Outcome   string          `json:"outcome"` // FULFILLED | PARTIAL | REJECTED
	Requested decimal.Decimal `json:"requested"`
	Picked    decimal.Decimal `json:"picked"`
	Note      string          `json:"note,omitempty"`
}

// PickingListItemResponse salida de una línea de picking.
type PickingListItemResponse struct {
	ID              string          `json:"id"`
	MaterialType    string          `json:"material_type"`
	MaterialID      string          `json:"material_id"`
	ComponentID     string          `json:"component_id,omitempty"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered"`
	QuantityPicked  decimal.Decimal `json:"quantity_picked"`
	Note            string          `json:"note,omitempty"`
}

// PickingListResponse salida de un picking list con sus líneas.
type PickingListResponse struct {
	ID          string                    `json:"id"`
	SourceType  string                    `json:"source_type"`
	SourceID    string                    `json:"source_id"`
	Status      string                    `json:"status"`
	CreatedAt   time.Time                 `json:"created_at"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	Items       []PickingListItemResponse `json:"items"`
}

// ProcessPickingResponse reporte del batch: la lista actualizada más el
// resultado de cada pick solicitado, en el orden en que se procesaron.
type ProcessPickingResponse struct {
	List    PickingListResponse `json:"list"`
	Results []PickResult        `json:"results"`
}
