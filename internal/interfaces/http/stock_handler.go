package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	uc *ledger.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.LedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// itemRefFromParams arma el ItemRef desde los path params :type/:id.
func itemRefFromParams(c *fiber.Ctx) entity.ItemRef {
	return entity.ItemRef{
		Type: entity.ItemType(c.Params("type")),
		ID:   c.Params("id"),
	}
}

// parseTimeQuery lee un query param de fecha RFC3339; nil si está vacío.
func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toStockRecordResponse(rec *entity.StockRecord) dto.StockRecordResponse {
	return dto.StockRecordResponse{
		ItemType:     string(rec.ItemRef.Type),
		ItemID:       rec.ItemRef.ID,
		Quantity:     rec.Quantity,
		MinThreshold: rec.MinThreshold,
		Status:       string(rec.Status),
		Retired:      rec.Retired,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toTransactionResponse(tx *entity.StockTransaction) dto.StockTransactionResponse {
	return dto.StockTransactionResponse{
		ID:        tx.ID,
		ItemType:  string(tx.ItemRef.Type),
		ItemID:    tx.ItemRef.ID,
		Type:      string(tx.Type),
		Delta:     tx.Delta,
		Reason:    tx.Reason,
		CreatedBy: tx.CreatedBy,
		CreatedAt: tx.CreatedAt,
	}
}

// Adjust godoc
// @Summary      Registrar un ajuste de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "item_type, item_id, type, delta (con signo), reason"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Adjust(c.Context(), ledger.AdjustInput{
		ItemRef: entity.ItemRef{Type: entity.ItemType(in.ItemType), ID: in.ItemID},
		Type:    entity.TransactionType(in.Type),
		Delta:   in.Delta,
		Reason:  in.Reason,
		UserID:  GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// GetRecord godoc
// @Summary      Consultar el stock actual de un ítem
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "material | product | tool"
// @Param        id    path  string  true  "ID del ítem"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/{type}/{id} [get]
func (h *StockHandler) GetRecord(c *fiber.Ctx) error {
	rec, err := h.uc.GetRecord(c.Context(), itemRefFromParams(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ítem sin stock inicializado"})
	}
	return c.JSON(toStockRecordResponse(rec))
}

// History godoc
// @Summary      Historial de transacciones de un ítem
// @Description  Orden ascendente por fecha; con balance=true incluye el saldo
//
//	acumulado reconstruido reproduciendo los deltas.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type   path   string  true   "material | product | tool"
// @Param        id     path   string  true   "ID del ítem"
// @Param        from   query  string  false  "RFC3339"
// @Param        to     query  string  false  "RFC3339"
// @Param        balance query bool    false  "incluir saldo acumulado"
// @Success      200    {array}  dto.StockTransactionResponse
// @Router       /api/stock/{type}/{id}/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	ref := itemRefFromParams(c)
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}

	if c.QueryBool("balance") {
		points, err := h.uc.HistoryWithBalance(c.Context(), ref, from, to)
		if err != nil {
			return respondDomainError(c, err)
		}
		out := make([]dto.StockHistoryPoint, 0, len(points))
		for _, p := range points {
			out = append(out, dto.StockHistoryPoint{
				Transaction: toTransactionResponse(p.Transaction),
				Balance:     p.Balance,
			})
		}
		return c.JSON(fiber.Map{"total": len(out), "history": out})
	}

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	txs, err := h.uc.History(c.Context(), ref, from, to, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.StockTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return c.JSON(fiber.Map{"total": len(out), "transactions": out})
}

// SetThreshold godoc
// @Summary      Actualizar el umbral mínimo de un ítem
// @Description  Rederiva el estado con la cantidad existente; no crea transacción.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string  true  "material | product | tool"
// @Param        id    path  string  true  "ID del ítem"
// @Param        body  body  dto.SetThresholdRequest  true  "min_threshold"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/{type}/{id}/threshold [put]
func (h *StockHandler) SetThreshold(c *fiber.Ctx) error {
	var in dto.SetThresholdRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.SetMinThreshold(c.Context(), itemRefFromParams(c), in.MinThreshold)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// Retire godoc
// @Summary      Retirar lógicamente un ítem del stock
// @Description  Conserva historial y consulta; rechaza ajustes posteriores.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "material | product | tool"
// @Param        id    path  string  true  "ID del ítem"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/{type}/{id}/retire [post]
func (h *StockHandler) Retire(c *fiber.Ctx) error {
	rec, err := h.uc.Retire(c.Context(), itemRefFromParams(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// LowStock godoc
// @Summary      Ítems en stock bajo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        include_out_of_stock  query  bool  false  "incluir también OUT_OF_STOCK"
// @Success      200  {array}  dto.StockRecordResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	records, err := h.uc.LowStock(c.Context(), c.QueryBool("include_out_of_stock"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.StockRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toStockRecordResponse(rec))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}
