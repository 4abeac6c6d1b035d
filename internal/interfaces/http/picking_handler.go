package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/picking"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PickingHandler maneja las peticiones HTTP de picking lists (protegido).
type PickingHandler struct {
	uc  *picking.PickingUseCase
	pdf *picking.PDFUseCase
}

// NewPickingHandler construye el handler.
func NewPickingHandler(uc *picking.PickingUseCase, pdf *picking.PDFUseCase) *PickingHandler {
	return &PickingHandler{uc: uc, pdf: pdf}
}

func toPickingListResponse(list *entity.PickingList) dto.PickingListResponse {
	items := make([]dto.PickingListItemResponse, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, dto.PickingListItemResponse{
			ID:              item.ID,
			MaterialType:    string(item.MaterialRef.Type),
			MaterialID:      item.MaterialRef.ID,
			ComponentID:     item.ComponentID,
			QuantityOrdered: item.QuantityOrdered,
			QuantityPicked:  item.QuantityPicked,
			Note:            item.Note,
		})
	}
	return dto.PickingListResponse{
		ID:          list.ID,
		SourceType:  string(list.SourceRef.Type),
		SourceID:    list.SourceRef.ID,
		Status:      string(list.Status),
		CreatedAt:   list.CreatedAt,
		CompletedAt: list.CompletedAt,
		Items:       items,
	}
}

// CreateFromProject godoc
// @Summary      Crear picking list desde el BOM de un proyecto
// @Description  Idempotente: si ya existe una lista activa para el proyecto, la devuelve.
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePickingListRequest  true  "project_id"
// @Success      201   {object}  dto.PickingListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/picking-lists/from-project [post]
func (h *PickingHandler) CreateFromProject(c *fiber.Ctx) error {
	var in dto.CreatePickingListRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	list, err := h.uc.CreateFromProject(c.Context(), in.ProjectID, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPickingListResponse(list))
}

// Get godoc
// @Summary      Consultar un picking list
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la lista"
// @Success      200  {object}  dto.PickingListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/picking-lists/{id} [get]
func (h *PickingHandler) Get(c *fiber.Ctx) error {
	list, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toPickingListResponse(list))
}

// List godoc
// @Summary      Listar picking lists
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "DRAFT | IN_PROGRESS | COMPLETED"
// @Success      200  {array}  dto.PickingListResponse
// @Router       /api/picking-lists [get]
func (h *PickingHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	lists, err := h.uc.List(c.Context(), entity.PickingListStatus(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.PickingListResponse, 0, len(lists))
	for _, list := range lists {
		out = append(out, toPickingListResponse(list))
	}
	return c.JSON(fiber.Map{"total": len(out), "lists": out})
}

// Process godoc
// @Summary      Procesar un batch de picks contra el ledger
// @Description  Cada línea reporta su resultado (FULFILLED | PARTIAL | REJECTED);
//
//	un quiebre de stock en un material no bloquea el resto del batch.
//
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la lista"
// @Param        body  body  dto.ProcessPickingRequest  true  "picks: [{item_id, quantity}]"
// @Success      200   {object}  dto.ProcessPickingResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/picking-lists/{id}/process [post]
func (h *PickingHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessPickingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	list, results, err := h.uc.Process(c.Context(), c.Params("id"), in.Picks, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ProcessPickingResponse{
		List:    toPickingListResponse(list),
		Results: results,
	})
}

// Complete godoc
// @Summary      Forzar cierre de un picking list ya pickeado por completo
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la lista"
// @Success      200  {object}  dto.PickingListResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/picking-lists/{id}/complete [post]
func (h *PickingHandler) Complete(c *fiber.Ctx) error {
	list, err := h.uc.ForceComplete(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toPickingListResponse(list))
}

// Delete godoc
// @Summary      Eliminar un picking list en DRAFT
// @Tags         picking
// @Security     Bearer
// @Param        id  path  string  true  "ID de la lista"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/picking-lists/{id} [delete]
func (h *PickingHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteDraft(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Sheet godoc
// @Summary      Hoja de picking en PDF para bodega
// @Tags         picking
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la lista"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/picking-lists/{id}/pdf [get]
func (h *PickingHandler) Sheet(c *fiber.Ctx) error {
	bytes, err := h.pdf.GenerateSheet(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="picking-list.pdf"`)
	return c.Send(bytes)
}
