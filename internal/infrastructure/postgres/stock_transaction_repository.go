package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo implementación del ledger append-only sobre PostgreSQL
// (usable con pool o tx). Solo INSERT y SELECT: las transacciones nunca se
// actualizan ni se borran.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create persiste una transacción del ledger.
func (r *StockTransactionRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_transactions (id, item_type, item_id, type, delta, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	createdBy := (*string)(nil)
	if tx.CreatedBy != "" {
		createdBy = &tx.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.ItemRef.Type, tx.ItemRef.ID, tx.Type, tx.Delta, tx.Reason, createdBy, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock transaction: %w", err)
	}
	return nil
}

// ListByItem lista transacciones de un ítem en orden ascendente de fecha
// (ID como desempate para un orden total estable), con rango opcional.
func (r *StockTransactionRepo) ListByItem(ctx context.Context, ref entity.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT id, item_type, item_id, type, delta, reason, created_by, created_at
		FROM stock_transactions WHERE item_type = $1 AND item_id = $2`
	args := []any{ref.Type, ref.ID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		var tx entity.StockTransaction
		var createdBy *string
		if err := rows.Scan(&tx.ID, &tx.ItemRef.Type, &tx.ItemRef.ID, &tx.Type,
			&tx.Delta, &tx.Reason, &createdBy, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		if createdBy != nil {
			tx.CreatedBy = *createdBy
		}
		list = append(list, &tx)
	}
	return list, rows.Err()
}
