package picking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/metrics"
)

// Notas por línea visibles al usuario (comportamiento documentado, no
// silenciamiento de errores).
const (
	noteExceedsRemaining    = "requested quantity exceeds remaining order"
	notePartialFulfilled    = "partially fulfilled due to insufficient inventory"
	noteItemNotFound        = "item not found in picking list"
	noteListCompleted       = "picking list already completed"
	noteMaterialUnavailable = "material not available for picking"
)

// Process ejecuta un batch de picks contra el ledger, en el orden solicitado.
// Máquina de estados: DRAFT → IN_PROGRESS en el primer intento (idempotente si
// ya está IN_PROGRESS); lista COMPLETED → ErrBusinessRule sin mutar nada.
//
// Cada pick corre en su propia unidad de trabajo, así un quiebre de stock en
// un material no bloquea el resto del batch y los picks confirmados no se
// revierten por fallos posteriores:
//   - cantidad fuera de [0, pendiente] → línea omitida con nota (REJECTED)
//   - stock insuficiente → se descuenta el máximo disponible con nota (PARTIAL)
//   - descuento completo → FULFILLED
//
// La completitud se recalcula al final desde las filas autoritativas bajo el
// bloqueo de la lista, nunca desde una copia en memoria.
func (uc *PickingUseCase) Process(ctx context.Context, listID string, picks []dto.PickRequestItem, userID string) (*entity.PickingList, []dto.PickResult, error) {
	if listID == "" || len(picks) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	start := time.Now()

	// Transición de estado bajo bloqueo de la lista.
	err := uc.txRunner.Run(ctx, func(
		listRepo repository.PickingListRepository,
		_ repository.StockRecordRepository,
		_ repository.StockTransactionRepository,
	) error {
		list, err := listRepo.GetForUpdate(ctx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return domain.ErrNotFound
		}
		if list.Status == entity.PickingCompleted {
			return domain.ErrBusinessRule
		}
		if list.Status == entity.PickingDraft {
			return listRepo.UpdateStatus(ctx, listID, entity.PickingInProgress, nil)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	results := make([]dto.PickResult, 0, len(picks))
	for _, pick := range picks {
		res, err := uc.processPick(ctx, listID, pick, userID)
		if err != nil {
			// Falla de infraestructura: aborta el batch. Los picks ya
			// confirmados quedan confirmados (cada uno tiene su propia tx).
			return nil, results, fmt.Errorf("process pick %s: %w", pick.ItemID, err)
		}
		results = append(results, res)
	}

	// Recalcular completitud desde el estado autoritativo post-ajustes.
	var updated *entity.PickingList
	err = uc.txRunner.Run(ctx, func(
		listRepo repository.PickingListRepository,
		_ repository.StockRecordRepository,
		_ repository.StockTransactionRepository,
	) error {
		list, err := listRepo.GetForUpdate(ctx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return domain.ErrNotFound
		}
		if list.Status != entity.PickingCompleted && list.AllItemsPicked() {
			now := time.Now()
			if err := listRepo.UpdateStatus(ctx, listID, entity.PickingCompleted, &now); err != nil {
				return err
			}
			list.Status = entity.PickingCompleted
			list.CompletedAt = &now
			metrics.PickingListsCompleted.Inc()
		}
		updated = list
		return nil
	})
	if err != nil {
		return nil, results, err
	}

	metrics.PickingProcessDuration.Observe(time.Since(start).Seconds())
	return updated, results, nil
}

// processPick ejecuta un pick en su propia transacción: bloquea la fila de la
// lista, valida la línea, descuenta vía ledger (misma tx) y actualiza el
// progreso de la línea.
//
// Los resultados de dominio (línea inválida, material retirado, stock
// insuficiente) se reportan como línea REJECTED/PARTIAL con nota fija; solo
// los errores de infraestructura (BD, conexión) se devuelven al caller.
func (uc *PickingUseCase) processPick(ctx context.Context, listID string, pick dto.PickRequestItem, userID string) (dto.PickResult, error) {
	res := dto.PickResult{
		ItemID:    pick.ItemID,
		Requested: pick.Quantity,
		Picked:    decimal.Zero,
	}
	err := uc.txRunner.Run(ctx, func(
		listRepo repository.PickingListRepository,
		recordRepo repository.StockRecordRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		list, err := listRepo.GetForUpdate(ctx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return domain.ErrNotFound
		}
		if list.Status == entity.PickingCompleted {
			// Otra corrida concurrente completó la lista entre picks.
			res.Outcome = dto.PickOutcomeRejected
			res.Note = noteListCompleted
			return nil
		}
		item := list.ItemByID(pick.ItemID)
		if item == nil {
			res.Outcome = dto.PickOutcomeRejected
			res.Note = noteItemNotFound
			return nil
		}

		remaining := item.Remaining()
		if pick.Quantity.IsNegative() || pick.Quantity.GreaterThan(remaining) {
			// Se omite esta línea sin abortar el batch (política "skip and note").
			res.Outcome = dto.PickOutcomeRejected
			res.Note = noteExceedsRemaining
			item.Note = noteExceedsRemaining
			return listRepo.UpdateItem(ctx, item)
		}
		if pick.Quantity.IsZero() {
			res.Outcome = dto.PickOutcomeFulfilled
			return nil
		}

		// Bloquear el stock y decidir la cantidad efectiva: si no alcanza,
		// se pickea el máximo disponible en lugar de fallar el batch.
		rec, err := recordRepo.GetForUpdate(ctx, item.MaterialRef)
		if err != nil {
			return err
		}
		available := decimal.Zero
		if rec != nil {
			available = rec.Quantity
		}
		toPick := pick.Quantity
		partial := false
		if available.LessThan(toPick) {
			toPick = available
			partial = true
		}

		if toPick.IsPositive() {
			_, err := uc.ledger.AdjustInTx(ctx, recordRepo, txRepo, ledger.AdjustInput{
				ItemRef: item.MaterialRef,
				Type:    entity.TransactionUSAGE,
				Delta:   toPick.Neg(),
				Reason:  "picking list " + listID,
				UserID:  userID,
			}, time.Now())
			if err != nil {
				return err
			}
			item.QuantityPicked = item.QuantityPicked.Add(toPick)
		}

		if partial {
			res.Outcome = dto.PickOutcomePartial
			res.Note = notePartialFulfilled
			item.Note = notePartialFulfilled
		} else {
			res.Outcome = dto.PickOutcomeFulfilled
		}
		res.Picked = toPick
		return listRepo.UpdateItem(ctx, item)
	})
	if err != nil {
		// Solo las reglas de dominio se absorben como línea rechazada; un
		// error de infraestructura nunca se disfraza de resultado ni expone
		// su mensaje crudo al cliente.
		if errors.Is(err, domain.ErrBusinessRule) || errors.Is(err, domain.ErrInsufficientStock) {
			res.Outcome = dto.PickOutcomeRejected
			res.Note = noteMaterialUnavailable
			res.Picked = decimal.Zero
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// ForceComplete marca la lista COMPLETED cuando todas sus líneas ya están
// completamente pickeadas; si falta alguna devuelve ErrBusinessRule.
// Idempotente sobre una lista ya COMPLETED.
func (uc *PickingUseCase) ForceComplete(ctx context.Context, listID string) (*entity.PickingList, error) {
	if listID == "" {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.PickingList
	err := uc.txRunner.Run(ctx, func(
		listRepo repository.PickingListRepository,
		_ repository.StockRecordRepository,
		_ repository.StockTransactionRepository,
	) error {
		list, err := listRepo.GetForUpdate(ctx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return domain.ErrNotFound
		}
		if list.Status == entity.PickingCompleted {
			updated = list
			return nil
		}
		if !list.AllItemsPicked() {
			return domain.ErrBusinessRule
		}
		now := time.Now()
		if err := listRepo.UpdateStatus(ctx, listID, entity.PickingCompleted, &now); err != nil {
			return err
		}
		list.Status = entity.PickingCompleted
		list.CompletedAt = &now
		metrics.PickingListsCompleted.Inc()
		updated = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
