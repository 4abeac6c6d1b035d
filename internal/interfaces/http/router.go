package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/picking"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC   *ledger.LedgerUseCase
	PickingUC  *picking.PickingUseCase
	PickingPDF *picking.PDFUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	warehouse := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Stock ledger (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC)
	stock.Post("/adjustments", warehouse, stockHandler.Adjust)
	stock.Get("/low", stockHandler.LowStock)
	stock.Get("/:type/:id", stockHandler.GetRecord)
	stock.Get("/:type/:id/history", stockHandler.History)
	stock.Put("/:type/:id/threshold", warehouse, stockHandler.SetThreshold)
	stock.Post("/:type/:id/retire", RequireRole(entity.RoleAdmin), stockHandler.Retire)

	// Picking lists (protegido)
	lists := protected.Group("/picking-lists")
	pickingHandler := NewPickingHandler(deps.PickingUC, deps.PickingPDF)
	lists.Post("/from-project", warehouse, pickingHandler.CreateFromProject)
	lists.Get("/", pickingHandler.List)
	lists.Get("/:id", pickingHandler.Get)
	lists.Get("/:id/pdf", pickingHandler.Sheet)
	lists.Post("/:id/process", warehouse, pickingHandler.Process)
	lists.Post("/:id/complete", warehouse, pickingHandler.Complete)
	lists.Delete("/:id", warehouse, pickingHandler.Delete)
}
