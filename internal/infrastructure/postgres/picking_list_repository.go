package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.PickingListRepository = (*PickingListRepo)(nil)

// PickingListRepo implementación de PickingListRepository sobre PostgreSQL
// (usable con pool o tx). La lista es dueña de sus items: se insertan y
// borran en cascada con ella.
type PickingListRepo struct {
	q Querier
}

// NewPickingListRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPickingListRepository(q Querier) *PickingListRepo {
	return &PickingListRepo{q: q}
}

// Create persiste la lista con todas sus líneas. Una violación del índice
// único de origen activo se reporta como ErrDuplicate (política de
// idempotencia de la capa de aplicación).
func (r *PickingListRepo) Create(ctx context.Context, list *entity.PickingList) error {
	query := `
		INSERT INTO picking_lists (id, source_type, source_id, status, created_by, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	createdBy := (*string)(nil)
	if list.CreatedBy != "" {
		createdBy = &list.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		list.ID, list.SourceRef.Type, list.SourceRef.ID, list.Status,
		createdBy, list.CreatedAt, list.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_picking_lists_active_source") {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create picking list: %w", err)
	}
	for _, item := range list.Items {
		if err := r.insertItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *PickingListRepo) insertItem(ctx context.Context, item *entity.PickingListItem) error {
	query := `
		INSERT INTO picking_list_items (id, list_id, material_type, material_id, component_id, quantity_ordered, quantity_picked, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	componentID := (*string)(nil)
	if item.ComponentID != "" {
		componentID = &item.ComponentID
	}
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ListID, item.MaterialRef.Type, item.MaterialRef.ID,
		componentID, item.QuantityOrdered, item.QuantityPicked, item.Note,
	)
	if err != nil {
		return fmt.Errorf("create picking list item: %w", err)
	}
	return nil
}

const pickingListColumns = `id, source_type, source_id, status, created_by, created_at, completed_at`

// GetByID obtiene la lista con sus líneas; (nil, nil) si no existe.
func (r *PickingListRepo) GetByID(ctx context.Context, id string) (*entity.PickingList, error) {
	query := `SELECT ` + pickingListColumns + ` FROM picking_lists WHERE id = $1`
	return r.getOne(ctx, query, id, "get picking list")
}

// GetForUpdate obtiene la lista bloqueando su fila (SELECT FOR UPDATE) y carga
// sus líneas; serializa procesos concurrentes sobre la misma lista.
func (r *PickingListRepo) GetForUpdate(ctx context.Context, id string) (*entity.PickingList, error) {
	query := `SELECT ` + pickingListColumns + ` FROM picking_lists WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id, "get picking list for update")
}

func (r *PickingListRepo) getOne(ctx context.Context, query, arg, op string) (*entity.PickingList, error) {
	list, err := r.scanList(r.q.QueryRow(ctx, query, arg), op)
	if err != nil || list == nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PickingListRepo) scanList(row pgx.Row, op string) (*entity.PickingList, error) {
	var list entity.PickingList
	var createdBy *string
	err := row.Scan(
		&list.ID, &list.SourceRef.Type, &list.SourceRef.ID, &list.Status,
		&createdBy, &list.CreatedAt, &list.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if createdBy != nil {
		list.CreatedBy = *createdBy
	}
	return &list, nil
}

func (r *PickingListRepo) loadItems(ctx context.Context, list *entity.PickingList) error {
	query := `
		SELECT id, list_id, material_type, material_id, component_id, quantity_ordered, quantity_picked, note
		FROM picking_list_items WHERE list_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, list.ID)
	if err != nil {
		return fmt.Errorf("load picking list items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entity.PickingListItem
		var componentID *string
		if err := rows.Scan(&item.ID, &item.ListID, &item.MaterialRef.Type, &item.MaterialRef.ID,
			&componentID, &item.QuantityOrdered, &item.QuantityPicked, &item.Note); err != nil {
			return fmt.Errorf("scan picking list item: %w", err)
		}
		if componentID != nil {
			item.ComponentID = *componentID
		}
		list.Items = append(list.Items, &item)
	}
	return rows.Err()
}

// FindActiveBySource busca una lista no COMPLETED para el origen dado; (nil, nil) si no hay.
func (r *PickingListRepo) FindActiveBySource(ctx context.Context, source entity.SourceRef) (*entity.PickingList, error) {
	query := `
		SELECT ` + pickingListColumns + `
		FROM picking_lists
		WHERE source_type = $1 AND source_id = $2 AND status <> $3
		ORDER BY created_at DESC
		LIMIT 1`
	list, err := r.scanList(r.q.QueryRow(ctx, query, source.Type, source.ID, entity.PickingCompleted), "find active picking list")
	if err != nil || list == nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByStatus lista por estado (vacío = todas), más recientes primero, con sus líneas.
func (r *PickingListRepo) ListByStatus(ctx context.Context, status entity.PickingListStatus, limit, offset int) ([]*entity.PickingList, error) {
	query := `SELECT ` + pickingListColumns + ` FROM picking_lists`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list picking lists: %w", err)
	}
	defer rows.Close()
	var lists []*entity.PickingList
	for rows.Next() {
		var list entity.PickingList
		var createdBy *string
		if err := rows.Scan(&list.ID, &list.SourceRef.Type, &list.SourceRef.ID, &list.Status,
			&createdBy, &list.CreatedAt, &list.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan picking list: %w", err)
		}
		if createdBy != nil {
			list.CreatedBy = *createdBy
		}
		lists = append(lists, &list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, list := range lists {
		if err := r.loadItems(ctx, list); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

// UpdateStatus actualiza estado y completed_at de la lista.
func (r *PickingListRepo) UpdateStatus(ctx context.Context, listID string, status entity.PickingListStatus, completedAt *time.Time) error {
	query := `UPDATE picking_lists SET status = $1, completed_at = $2 WHERE id = $3`
	tag, err := r.q.Exec(ctx, query, status, completedAt, listID)
	if err != nil {
		return fmt.Errorf("update picking list status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItem actualiza el progreso y la nota de una línea.
func (r *PickingListRepo) UpdateItem(ctx context.Context, item *entity.PickingListItem) error {
	query := `
		UPDATE picking_list_items
		SET quantity_picked = $1, note = $2
		WHERE id = $3`
	tag, err := r.q.Exec(ctx, query, item.QuantityPicked, item.Note, item.ID)
	if err != nil {
		return fmt.Errorf("update picking list item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la lista y sus líneas (cascada manual por si la FK no la define).
func (r *PickingListRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM picking_list_items WHERE list_id = $1`, id); err != nil {
		return fmt.Errorf("delete picking list items: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM picking_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete picking list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
