package picking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// PickingUseCase arma picking lists a partir del BOM de un proyecto y los
// consulta. El procesamiento de picks vive en process.go.
type PickingUseCase struct {
	txRunner    TxRunner
	listRepo    repository.PickingListRepository
	projectRepo repository.ProjectRepository
	ledger      *ledger.LedgerUseCase
}

// NewPickingUseCase construye el caso de uso.
func NewPickingUseCase(
	txRunner TxRunner,
	listRepo repository.PickingListRepository,
	projectRepo repository.ProjectRepository,
	ledgerUC *ledger.LedgerUseCase,
) *PickingUseCase {
	return &PickingUseCase{
		txRunner:    txRunner,
		listRepo:    listRepo,
		projectRepo: projectRepo,
		ledger:      ledgerUC,
	}
}

// CreateFromProject expande el BOM del proyecto en un picking list DRAFT con
// una línea por material requerido (quantity_ordered = material_quantity *
// cantidad del componente; materiales repetidos se consolidan en una línea).
// Política de idempotencia: si ya existe una lista no COMPLETED para el mismo
// origen se devuelve esa, nunca se duplica.
func (uc *PickingUseCase) CreateFromProject(ctx context.Context, projectID, userID string) (*entity.PickingList, error) {
	if projectID == "" {
		return nil, domain.ErrInvalidInput
	}
	exists, err := uc.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	source := entity.SourceRef{Type: entity.SourceProject, ID: projectID}
	if existing, err := uc.listRepo.FindActiveBySource(ctx, source); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	components, err := uc.projectRepo.GetComponents(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, domain.ErrInvalidInput // proyecto sin componentes: BOM vacío
	}

	now := time.Now()
	list := &entity.PickingList{
		ID:        uuid.New().String(),
		SourceRef: source,
		Status:    entity.PickingDraft,
		CreatedBy: userID,
		CreatedAt: now,
	}

	// Consolidar materiales repetidos conservando el orden del BOM.
	itemByMaterial := make(map[entity.ItemRef]*entity.PickingListItem, len(components))
	for _, comp := range components {
		required := comp.RequiredQuantity()
		if !required.IsPositive() {
			continue
		}
		if item, ok := itemByMaterial[comp.MaterialRef]; ok {
			item.QuantityOrdered = item.QuantityOrdered.Add(required)
			continue
		}
		item := &entity.PickingListItem{
			ID:              uuid.New().String(),
			ListID:          list.ID,
			MaterialRef:     comp.MaterialRef,
			ComponentID:     comp.ComponentID,
			QuantityOrdered: required,
			QuantityPicked:  decimal.Zero,
		}
		itemByMaterial[comp.MaterialRef] = item
		list.Items = append(list.Items, item)
	}
	if len(list.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if err := uc.listRepo.Create(ctx, list); err != nil {
		// Carrera de creación: otro caller insertó la lista activa primero.
		if errors.Is(err, domain.ErrDuplicate) {
			if existing, ferr := uc.listRepo.FindActiveBySource(ctx, source); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return list, nil
}

// Get devuelve la lista con sus líneas; ErrNotFound si no existe.
func (uc *PickingUseCase) Get(ctx context.Context, listID string) (*entity.PickingList, error) {
	if listID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, domain.ErrNotFound
	}
	return list, nil
}

// List lista picking lists por estado (vacío = todas).
func (uc *PickingUseCase) List(ctx context.Context, status entity.PickingListStatus, limit, offset int) ([]*entity.PickingList, error) {
	switch status {
	case "", entity.PickingDraft, entity.PickingInProgress, entity.PickingCompleted:
	default:
		return nil, domain.ErrInvalidInput
	}
	return uc.listRepo.ListByStatus(ctx, status, limit, offset)
}

// DeleteDraft elimina una lista solo mientras siga en DRAFT; con progreso o
// completada devuelve ErrBusinessRule.
func (uc *PickingUseCase) DeleteDraft(ctx context.Context, listID string) error {
	if listID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
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
		if list.Status != entity.PickingDraft {
			return domain.ErrBusinessRule
		}
		return listRepo.Delete(ctx, listID)
	})
}
