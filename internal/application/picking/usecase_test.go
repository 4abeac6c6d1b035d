package picking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/picking"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El fake de listas imita la semántica de la BD: las lecturas
// devuelven copias (como un SELECT) y solo UpdateItem/UpdateStatus persisten
// cambios, así los tests detectan mutaciones que olvidan escribir de vuelta.
// ──────────────────────────────────────────────────────────────────────────────

type fakeListRepo struct {
	lists map[string]*entity.PickingList
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: make(map[string]*entity.PickingList)}
}

func copyList(l *entity.PickingList) *entity.PickingList {
	cp := *l
	cp.Items = make([]*entity.PickingListItem, len(l.Items))
	for i, item := range l.Items {
		itemCp := *item
		cp.Items[i] = &itemCp
	}
	return &cp
}

func (r *fakeListRepo) Create(_ context.Context, list *entity.PickingList) error {
	for _, existing := range r.lists {
		if existing.SourceRef == list.SourceRef && existing.Status != entity.PickingCompleted {
			return domain.ErrDuplicate
		}
	}
	r.lists[list.ID] = copyList(list)
	return nil
}

func (r *fakeListRepo) GetByID(_ context.Context, id string) (*entity.PickingList, error) {
	l, ok := r.lists[id]
	if !ok {
		return nil, nil
	}
	return copyList(l), nil
}

func (r *fakeListRepo) GetForUpdate(ctx context.Context, id string) (*entity.PickingList, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeListRepo) FindActiveBySource(_ context.Context, source entity.SourceRef) (*entity.PickingList, error) {
	for _, l := range r.lists {
		if l.SourceRef == source && l.Status != entity.PickingCompleted {
			return copyList(l), nil
		}
	}
	return nil, nil
}

func (r *fakeListRepo) ListByStatus(_ context.Context, status entity.PickingListStatus, limit, offset int) ([]*entity.PickingList, error) {
	var out []*entity.PickingList
	for _, l := range r.lists {
		if status == "" || l.Status == status {
			out = append(out, copyList(l))
		}
	}
	return out, nil
}

func (r *fakeListRepo) UpdateStatus(_ context.Context, listID string, status entity.PickingListStatus, completedAt *time.Time) error {
	l, ok := r.lists[listID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Status = status
	l.CompletedAt = completedAt
	return nil
}

func (r *fakeListRepo) UpdateItem(_ context.Context, item *entity.PickingListItem) error {
	l, ok := r.lists[item.ListID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, existing := range l.Items {
		if existing.ID == item.ID {
			cp := *item
			l.Items[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeListRepo) Delete(_ context.Context, id string) error {
	delete(r.lists, id)
	return nil
}

type fakeProjectRepo struct {
	components map[string][]entity.ProjectComponent
}

func (r *fakeProjectRepo) Exists(_ context.Context, projectID string) (bool, error) {
	_, ok := r.components[projectID]
	return ok, nil
}

func (r *fakeProjectRepo) GetComponents(_ context.Context, projectID string) ([]entity.ProjectComponent, error) {
	return r.components[projectID], nil
}

type fakeRecordRepo struct {
	records map[string]*entity.StockRecord
	// failOn simula errores de infraestructura por ítem (conexión caída, etc.)
	failOn map[string]error
}

func (r *fakeRecordRepo) Get(_ context.Context, ref entity.ItemRef) (*entity.StockRecord, error) {
	if err, ok := r.failOn[ref.String()]; ok {
		return nil, err
	}
	rec, ok := r.records[ref.String()]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRecordRepo) GetForUpdate(ctx context.Context, ref entity.ItemRef) (*entity.StockRecord, error) {
	return r.Get(ctx, ref)
}

func (r *fakeRecordRepo) Upsert(_ context.Context, record *entity.StockRecord) error {
	cp := *record
	r.records[record.ItemRef.String()] = &cp
	return nil
}

func (r *fakeRecordRepo) ListLowStock(_ context.Context, _ bool) ([]*entity.StockRecord, error) {
	return nil, nil
}

type fakeTxRepo struct {
	txs []*entity.StockTransaction
}

func (r *fakeTxRepo) Create(_ context.Context, tx *entity.StockTransaction) error {
	cp := *tx
	r.txs = append(r.txs, &cp)
	return nil
}

func (r *fakeTxRepo) ListByItem(_ context.Context, ref entity.ItemRef, _, _ *time.Time, _, _ int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	for _, tx := range r.txs {
		if tx.ItemRef == ref {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeRunner struct {
	listRepo   *fakeListRepo
	recordRepo *fakeRecordRepo
	txRepo     *fakeTxRepo
}

func (r *fakeRunner) Run(ctx context.Context, fn func(
	repository.PickingListRepository,
	repository.StockRecordRepository,
	repository.StockTransactionRepository,
) error) error {
	return fn(r.listRepo, r.recordRepo, r.txRepo)
}

type fakeLedgerRunner struct {
	recordRepo *fakeRecordRepo
	txRepo     *fakeTxRepo
}

func (r *fakeLedgerRunner) Run(ctx context.Context, fn func(
	repository.StockRecordRepository,
	repository.StockTransactionRepository,
) error) error {
	return fn(r.recordRepo, r.txRepo)
}

// ── Escenario base ────────────────────────────────────────────────────────────

var (
	refLamina   = entity.ItemRef{Type: entity.ItemTypeMaterial, ID: "MAT-LAM-2MM"}
	refTornillo = entity.ItemRef{Type: entity.ItemTypeMaterial, ID: "MAT-TORN-M6"}
)

type fixture struct {
	uc      *picking.PickingUseCase
	lists   *fakeListRepo
	records *fakeRecordRepo
	txs     *fakeTxRepo
}

// newFixture arma el caso de uso con un proyecto "PRJ-1" cuyo BOM pide
// 10 láminas (2 por componente x 5) y 40 tornillos (8 x 5), y el stock que
// indique cada test.
func newFixture(t *testing.T, stock map[entity.ItemRef]string) *fixture {
	t.Helper()
	lists := newFakeListRepo()
	records := &fakeRecordRepo{records: make(map[string]*entity.StockRecord)}
	txs := &fakeTxRepo{}
	for ref, qty := range stock {
		q := decimal.RequireFromString(qty)
		records.records[ref.String()] = &entity.StockRecord{
			ItemRef:  ref,
			Quantity: q,
			Status:   entity.StatusInStock,
		}
	}
	projects := &fakeProjectRepo{components: map[string][]entity.ProjectComponent{
		"PRJ-1": {
			{
				ComponentID:      "CMP-PANEL",
				Name:             "Panel lateral",
				MaterialRef:      refLamina,
				MaterialQuantity: decimal.RequireFromString("2"),
				Quantity:         decimal.RequireFromString("5"),
			},
			{
				ComponentID:      "CMP-UNION",
				Name:             "Unión atornillada",
				MaterialRef:      refTornillo,
				MaterialQuantity: decimal.RequireFromString("8"),
				Quantity:         decimal.RequireFromString("5"),
			},
		},
		"PRJ-VACIO": {},
	}}

	ledgerUC := ledger.NewLedgerUseCase(
		&fakeLedgerRunner{recordRepo: records, txRepo: txs},
		records, txs,
	)
	uc := picking.NewPickingUseCase(
		&fakeRunner{listRepo: lists, recordRepo: records, txRepo: txs},
		lists, projects, ledgerUC,
	)
	return &fixture{uc: uc, lists: lists, records: records, txs: txs}
}

func (f *fixture) createList(t *testing.T) *entity.PickingList {
	t.Helper()
	list, err := f.uc.CreateFromProject(context.Background(), "PRJ-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, list)
	return list
}

func (f *fixture) itemFor(t *testing.T, list *entity.PickingList, ref entity.ItemRef) *entity.PickingListItem {
	t.Helper()
	for _, item := range list.Items {
		if item.MaterialRef == ref {
			return item
		}
	}
	t.Fatalf("la lista no tiene línea para %s", ref)
	return nil
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Creación desde proyecto ───────────────────────────────────────────────────

func TestCreateFromProject_ExpandeElBOM(t *testing.T) {
	f := newFixture(t, nil)
	list := f.createList(t)

	assert.Equal(t, entity.PickingDraft, list.Status)
	assert.Equal(t, entity.SourceProject, list.SourceRef.Type)
	require.Len(t, list.Items, 2)

	laminas := f.itemFor(t, list, refLamina)
	assert.True(t, laminas.QuantityOrdered.Equal(qty("10")), "2 láminas x 5 componentes")
	tornillos := f.itemFor(t, list, refTornillo)
	assert.True(t, tornillos.QuantityOrdered.Equal(qty("40")), "8 tornillos x 5 componentes")
	assert.True(t, tornillos.QuantityPicked.IsZero())
}

func TestCreateFromProject_IdempotentePorOrigen(t *testing.T) {
	f := newFixture(t, nil)
	first := f.createList(t)
	second := f.createList(t)

	assert.Equal(t, first.ID, second.ID,
		"crear dos veces desde el mismo proyecto devuelve la lista activa existente")
	assert.Len(t, f.lists.lists, 1)
}

func TestCreateFromProject_ProyectoInexistente(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.CreateFromProject(context.Background(), "PRJ-NO-EXISTE", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateFromProject_BOMVacio(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.CreateFromProject(context.Background(), "PRJ-VACIO", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Procesamiento de picks ────────────────────────────────────────────────────

func TestProcess_PickCompletoDescuentaYMarcaFulfilled(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)

	updated, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("10")}}, "user-1")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, dto.PickOutcomeFulfilled, results[0].Outcome)
	assert.True(t, results[0].Picked.Equal(qty("10")))

	rec, _ := f.records.Get(context.Background(), refLamina)
	assert.True(t, rec.Quantity.Equal(qty("40")), "el stock se descuenta vía ledger")
	require.Len(t, f.txs.txs, 1)
	assert.Equal(t, entity.TransactionUSAGE, f.txs.txs[0].Type)
	assert.True(t, f.txs.txs[0].Delta.Equal(qty("-10")))

	assert.Equal(t, entity.PickingInProgress, updated.Status,
		"queda pendiente la línea de tornillos: aún no COMPLETED")
}

func TestProcess_StockInsuficienteDescuentaParcialConNota(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "6", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)

	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("10")}}, "user-1")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, dto.PickOutcomePartial, results[0].Outcome)
	assert.True(t, results[0].Picked.Equal(qty("6")), "se pickea el máximo disponible")
	assert.Equal(t, "partially fulfilled due to insufficient inventory", results[0].Note)

	rec, _ := f.records.Get(context.Background(), refLamina)
	assert.True(t, rec.Quantity.IsZero())

	stored, _ := f.lists.GetByID(context.Background(), list.ID)
	item := stored.ItemByID(laminas.ID)
	assert.True(t, item.QuantityPicked.Equal(qty("6")))
	assert.Equal(t, "partially fulfilled due to insufficient inventory", item.Note,
		"la nota queda persistida en la línea")
}

func TestProcess_CantidadMayorQuePendienteSeOmiteConNota(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)
	tornillos := f.itemFor(t, list, refTornillo)

	// La línea inválida se omite pero el batch continúa con la siguiente.
	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{
			{ItemID: laminas.ID, Quantity: qty("11")}, // pide más de lo ordenado
			{ItemID: tornillos.ID, Quantity: qty("40")},
		}, "user-1")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, dto.PickOutcomeRejected, results[0].Outcome)
	assert.Equal(t, "requested quantity exceeds remaining order", results[0].Note)
	assert.True(t, results[0].Picked.IsZero())
	assert.Equal(t, dto.PickOutcomeFulfilled, results[1].Outcome)

	rec, _ := f.records.Get(context.Background(), refLamina)
	assert.True(t, rec.Quantity.Equal(qty("50")), "la línea omitida no toca el stock")
}

func TestProcess_ItemAjenoALaListaSeRechaza(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)

	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: "no-existe", Quantity: qty("1")}}, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dto.PickOutcomeRejected, results[0].Outcome)
	assert.Equal(t, "item not found in picking list", results[0].Note)
}

func TestProcess_ReanudarHastaCompletar(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "6", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)
	tornillos := f.itemFor(t, list, refTornillo)

	// Primera corrida: parcial por quiebre de láminas, tornillos completos.
	updated, _, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{
			{ItemID: laminas.ID, Quantity: qty("10")},
			{ItemID: tornillos.ID, Quantity: qty("40")},
		}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PickingInProgress, updated.Status)

	// Llega reposición y se reanuda con el pendiente exacto.
	f.records.records[refLamina.String()].Quantity = qty("20")
	updated, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("4")}}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, dto.PickOutcomeFulfilled, results[0].Outcome)
	assert.Equal(t, entity.PickingCompleted, updated.Status,
		"al completar la última línea la lista pasa a COMPLETED")
	require.NotNil(t, updated.CompletedAt)
}

func TestProcess_ListaCompletadaEsInmutable(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)
	tornillos := f.itemFor(t, list, refTornillo)

	_, _, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{
			{ItemID: laminas.ID, Quantity: qty("10")},
			{ItemID: tornillos.ID, Quantity: qty("40")},
		}, "user-1")
	require.NoError(t, err)

	_, _, err = f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("1")}}, "user-1")
	assert.ErrorIs(t, err, domain.ErrBusinessRule,
		"una lista COMPLETED rechaza cualquier procesamiento posterior")

	rec, _ := f.records.Get(context.Background(), refLamina)
	assert.True(t, rec.Quantity.Equal(qty("40")), "el intento rechazado no muta el stock")
}

func TestProcess_PicksAcumulanSobreElPendiente(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)

	_, _, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("6")}}, "user-1")
	require.NoError(t, err)

	// El pendiente ahora es 4: pedir 5 excede y se omite.
	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("5")}}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, dto.PickOutcomeRejected, results[0].Outcome)

	_, results, err = f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("4")}}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, dto.PickOutcomeFulfilled, results[0].Outcome)

	stored, _ := f.lists.GetByID(context.Background(), list.ID)
	assert.True(t, stored.ItemByID(laminas.ID).QuantityPicked.Equal(qty("10")))
}

func TestProcess_CantidadCeroEsNoOpFulfilled(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)

	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: decimal.Zero}}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, dto.PickOutcomeFulfilled, results[0].Outcome)
	assert.Empty(t, f.txs.txs, "un pick de cero no genera movimiento en el ledger")
}

func TestProcess_ErrorDeInfraestructuraAbortaElBatch(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)
	tornillos := f.itemFor(t, list, refTornillo)

	// El primer pick confirma; el segundo encuentra la BD caída.
	infraErr := errors.New("connection reset by peer")
	f.records.failOn = map[string]error{refLamina.String(): infraErr}

	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{
			{ItemID: tornillos.ID, Quantity: qty("40")},
			{ItemID: laminas.ID, Quantity: qty("10")},
		}, "user-1")

	require.ErrorIs(t, err, infraErr,
		"un error de infraestructura se propaga en lugar de reportarse como línea")
	require.Len(t, results, 1, "solo el pick confirmado antes del fallo queda en el reporte")
	assert.Equal(t, dto.PickOutcomeFulfilled, results[0].Outcome)

	// El pick ya confirmado sobrevive: es su propia unidad de trabajo.
	rec, _ := f.records.Get(context.Background(), refTornillo)
	assert.True(t, rec.Quantity.Equal(qty("60")))
	stored, _ := f.lists.GetByID(context.Background(), list.ID)
	assert.True(t, stored.ItemByID(tornillos.ID).QuantityPicked.Equal(qty("40")))
	assert.Equal(t, entity.PickingInProgress, stored.Status)
}

func TestProcess_MaterialRetiradoSeRechazaConNotaFija(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)

	f.records.records[refLamina.String()].Retired = true

	_, results, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("10")}}, "user-1")
	require.NoError(t, err, "una regla de dominio no aborta el batch")
	require.Len(t, results, 1)
	assert.Equal(t, dto.PickOutcomeRejected, results[0].Outcome)
	assert.Equal(t, "material not available for picking", results[0].Note,
		"la nota es fija, nunca el mensaje crudo del error")
}

func TestProcess_ListaInexistente(t *testing.T) {
	f := newFixture(t, nil)
	_, _, err := f.uc.Process(context.Background(), "no-existe",
		[]dto.PickRequestItem{{ItemID: "x", Quantity: qty("1")}}, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Cierre forzado y borrado ──────────────────────────────────────────────────

func TestForceComplete_RechazaConPendientes(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)

	_, err := f.uc.ForceComplete(context.Background(), list.ID)
	assert.ErrorIs(t, err, domain.ErrBusinessRule,
		"no se puede cerrar una lista con líneas pendientes")
}

func TestForceComplete_IdempotenteSobreCompletada(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)
	tornillos := f.itemFor(t, list, refTornillo)

	_, _, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{
			{ItemID: laminas.ID, Quantity: qty("10")},
			{ItemID: tornillos.ID, Quantity: qty("40")},
		}, "user-1")
	require.NoError(t, err)

	updated, err := f.uc.ForceComplete(context.Background(), list.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PickingCompleted, updated.Status)
}

func TestDeleteDraft_SoloEnBorrador(t *testing.T) {
	f := newFixture(t, map[entity.ItemRef]string{refLamina: "50", refTornillo: "100"})
	list := f.createList(t)
	laminas := f.itemFor(t, list, refLamina)

	_, _, err := f.uc.Process(context.Background(), list.ID,
		[]dto.PickRequestItem{{ItemID: laminas.ID, Quantity: qty("1")}}, "user-1")
	require.NoError(t, err)

	err = f.uc.DeleteDraft(context.Background(), list.ID)
	assert.ErrorIs(t, err, domain.ErrBusinessRule,
		"una lista IN_PROGRESS ya tiene movimientos: no se borra")
}

func TestDeleteDraft_EliminaBorrador(t *testing.T) {
	f := newFixture(t, nil)
	list := f.createList(t)

	require.NoError(t, f.uc.DeleteDraft(context.Background(), list.ID))
	_, err := f.uc.Get(context.Background(), list.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
