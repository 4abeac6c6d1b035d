package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/metrics"
)

// LedgerUseCase orquesta ajustes atómicos de stock: valida, agrega una
// StockTransaction al ledger, actualiza el StockRecord y rederiva el estado,
// todo con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type LedgerUseCase struct {
	txRunner   TxRunner
	recordRepo repository.StockRecordRepository
	txRepo     repository.StockTransactionRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	recordRepo repository.StockRecordRepository,
	txRepo repository.StockTransactionRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:   txRunner,
		recordRepo: recordRepo,
		txRepo:     txRepo,
	}
}

// AdjustInput entrada para un ajuste de stock. Delta lleva signo: positivo
// entrada, negativo consumo. El signo debe ser consistente con Type.
type AdjustInput struct {
	ItemRef entity.ItemRef
	Type    entity.TransactionType
	Delta   decimal.Decimal
	Reason  string
	UserID  string
}

func (in AdjustInput) validate() error {
	if !in.ItemRef.Type.Valid() || in.ItemRef.ID == "" {
		return domain.ErrInvalidInput
	}
	if !in.Type.Valid() || in.Reason == "" || in.Delta.IsZero() {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.TransactionINITIAL, entity.TransactionINCREASE, entity.TransactionRETURN:
		if in.Delta.IsNegative() {
			return domain.ErrInvalidInput
		}
	case entity.TransactionUSAGE:
		if in.Delta.IsPositive() {
			return domain.ErrInvalidInput
		}
	}
	// ADJUSTMENT admite ambos signos
	return nil
}

// Adjust aplica un ajuste de cantidad de forma atómica y devuelve el registro
// actualizado. Si el resultado dejaría la cantidad negativa, falla con
// ErrInsufficientStock sin mutar nada (todo-o-nada para este ajuste).
// El primer ajuste positivo de un ítem crea su registro (alta por entrada).
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) (*entity.StockRecord, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	var updated *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		rec, err := uc.AdjustInTx(ctx, recordRepo, txRepo, input, now)
		if err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.StockAdjustments.WithLabelValues(string(input.Type)).Inc()
	return updated, nil
}

// AdjustInTx ejecuta el ajuste usando los repositorios proporcionados (misma
// transacción del caller). Lo usa el procesador de picking para que cada pick
// descuente stock dentro de su propia unidad de trabajo.
// La entrada ya debe estar validada por el caller o por Adjust.
func (uc *LedgerUseCase) AdjustInTx(
	ctx context.Context,
	recordRepo repository.StockRecordRepository,
	txRepo repository.StockTransactionRepository,
	input AdjustInput,
	now time.Time,
) (*entity.StockRecord, error) {
	// Bloquea la fila del registro (SELECT FOR UPDATE): cada ItemRef es un
	// recurso de un solo escritor a la vez; ítems distintos no se bloquean.
	rec, err := recordRepo.GetForUpdate(ctx, input.ItemRef)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if input.Delta.IsNegative() {
			metrics.InsufficientStockRejections.Inc()
			return nil, domain.ErrInsufficientStock
		}
		rec = &entity.StockRecord{
			ItemRef:      input.ItemRef,
			Quantity:     decimal.Zero,
			MinThreshold: decimal.Zero,
			CreatedAt:    now,
		}
	}
	if rec.Retired {
		return nil, domain.ErrBusinessRule
	}

	newQty := rec.Quantity.Add(input.Delta)
	if newQty.IsNegative() {
		metrics.InsufficientStockRejections.Inc()
		return nil, domain.ErrInsufficientStock
	}
	rec.Quantity = newQty
	rec.Status = inventory.DeriveStatus(newQty, rec.MinThreshold)
	rec.UpdatedAt = now
	if err := recordRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	tx := &entity.StockTransaction{
		ID:        uuid.New().String(),
		ItemRef:   input.ItemRef,
		Type:      input.Type,
		Delta:     input.Delta,
		Reason:    input.Reason,
		CreatedBy: input.UserID,
		CreatedAt: now,
	}
	if err := txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecord devuelve el estado actual del ítem, o nil si nunca fue inicializado.
func (uc *LedgerUseCase) GetRecord(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error) {
	if !ref.Type.Valid() || ref.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.recordRepo.Get(ctx, ref)
}

// History devuelve las transacciones del ítem en orden ascendente de fecha,
// con rango opcional y paginación reanudable.
func (uc *LedgerUseCase) History(ctx context.Context, ref entity.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	if !ref.Type.Valid() || ref.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.txRepo.ListByItem(ctx, ref, from, to, limit, offset)
}

// historyReplayBatch tamaño de página al reproducir el historial completo.
const historyReplayBatch = 1_000

// HistoryWithBalance reconstruye el saldo acumulado del ítem reproduciendo
// los deltas desde el inicio del historial, paginando hasta agotarlo. Las
// transacciones anteriores a `from` solo aportan al saldo inicial; las
// posteriores a `to` se omiten.
func (uc *LedgerUseCase) HistoryWithBalance(ctx context.Context, ref entity.ItemRef, from, to *time.Time) ([]HistoryPoint, error) {
	if !ref.Type.Valid() || ref.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	// El saldo solo es correcto reproduciendo desde la primera transacción.
	balance := decimal.Zero
	var points []HistoryPoint
	for offset := 0; ; offset += historyReplayBatch {
		txs, err := uc.txRepo.ListByItem(ctx, ref, nil, to, historyReplayBatch, offset)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			balance = balance.Add(tx.Delta)
			if from != nil && tx.CreatedAt.Before(*from) {
				continue
			}
			points = append(points, HistoryPoint{Transaction: tx, Balance: balance})
		}
		if len(txs) < historyReplayBatch {
			return points, nil
		}
	}
}

// HistoryPoint una transacción y el saldo del ítem después de aplicarla.
type HistoryPoint struct {
	Transaction *entity.StockTransaction
	Balance     decimal.Decimal
}

// SetMinThreshold actualiza el umbral mínimo y rederiva el estado con la
// cantidad existente. No crea transacción: el umbral es metadato, no un
// movimiento de stock.
func (uc *LedgerUseCase) SetMinThreshold(ctx context.Context, ref entity.ItemRef, threshold decimal.Decimal) (*entity.StockRecord, error) {
	if !ref.Type.Valid() || ref.ID == "" || threshold.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		_ repository.StockTransactionRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		rec.MinThreshold = threshold
		rec.Status = inventory.DeriveStatus(rec.Quantity, threshold)
		rec.UpdatedAt = time.Now()
		if err := recordRepo.Upsert(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LowStock devuelve los registros en LOW_STOCK y, si se pide, también los
// OUT_OF_STOCK. Los retirados nunca aparecen.
func (uc *LedgerUseCase) LowStock(ctx context.Context, includeOutOfStock bool) ([]*entity.StockRecord, error) {
	return uc.recordRepo.ListLowStock(ctx, includeOutOfStock)
}

// Retire marca el registro como retirado (retiro lógico): conserva historial
// y consulta pero rechaza ajustes posteriores. Idempotente.
func (uc *LedgerUseCase) Retire(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error) {
	if !ref.Type.Valid() || ref.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		_ repository.StockTransactionRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if !rec.Retired {
			rec.Retired = true
			rec.UpdatedAt = time.Now()
			if err := recordRepo.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
