package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PickingListRepository define el puerto de persistencia para PickingList y
// sus items (la lista es dueña exclusiva de sus líneas: cascada).
// GetByID, GetForUpdate y FindActiveBySource devuelven (nil, nil) si no hay lista.
type PickingListRepository interface {
	// Create persiste la lista con todas sus líneas.
	Create(ctx context.Context, list *entity.PickingList) error
	GetByID(ctx context.Context, id string) (*entity.PickingList, error)
	// GetForUpdate bloquea la fila de la lista (SELECT FOR UPDATE) y carga
	// sus items; serializa procesos concurrentes sobre la misma lista.
	GetForUpdate(ctx context.Context, id string) (*entity.PickingList, error)
	// FindActiveBySource busca una lista no COMPLETED para el mismo origen
	// (política de idempotencia de creación).
	FindActiveBySource(ctx context.Context, source entity.SourceRef) (*entity.PickingList, error)
	// ListByStatus lista por estado; status vacío devuelve todas.
	ListByStatus(ctx context.Context, status entity.PickingListStatus, limit, offset int) ([]*entity.PickingList, error)
	UpdateStatus(ctx context.Context, listID string, status entity.PickingListStatus, completedAt *time.Time) error
	UpdateItem(ctx context.Context, item *entity.PickingListItem) error
	// Delete elimina la lista y sus items (solo la capa de aplicación
	// garantiza que sea DRAFT).
	Delete(ctx context.Context, id string) error
}
