package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockRecordColumns = `item_type, item_id, quantity, min_threshold, status, retired, created_at, updated_at`

// Get obtiene el registro de stock de un ítem; (nil, nil) si nunca fue inicializado.
func (r *StockRecordRepo) Get(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE item_type = $1 AND item_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, ref.Type, ref.ID), "get stock record")
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE item_type = $1 AND item_id = $2
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, ref.Type, ref.ID), "get stock record for update")
}

func (r *StockRecordRepo) scanOne(row pgx.Row, op string) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := row.Scan(
		&rec.ItemRef.Type, &rec.ItemRef.ID, &rec.Quantity, &rec.MinThreshold,
		&rec.Status, &rec.Retired, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// Upsert inserta o actualiza el registro de stock (por tipo e id de ítem).
func (r *StockRecordRepo) Upsert(ctx context.Context, record *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (item_type, item_id, quantity, min_threshold, status, retired, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (item_type, item_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              min_threshold = EXCLUDED.min_threshold,
		              status = EXCLUDED.status,
		              retired = EXCLUDED.retired,
		              updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		record.ItemRef.Type, record.ItemRef.ID, record.Quantity, record.MinThreshold,
		record.Status, record.Retired, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

// ListLowStock devuelve los registros activos en LOW_STOCK y, opcionalmente, OUT_OF_STOCK.
func (r *StockRecordRepo) ListLowStock(ctx context.Context, includeOutOfStock bool) ([]*entity.StockRecord, error) {
	statuses := []any{entity.StatusLowStock}
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records
		WHERE retired = false AND status = $1`
	if includeOutOfStock {
		query += ` OR (retired = false AND status = $2)`
		statuses = append(statuses, entity.StatusOutOfStock)
	}
	query += ` ORDER BY item_type, item_id`

	rows, err := r.q.Query(ctx, query, statuses...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var rec entity.StockRecord
		if err := rows.Scan(
			&rec.ItemRef.Type, &rec.ItemRef.ID, &rec.Quantity, &rec.MinThreshold,
			&rec.Status, &rec.Retired, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
