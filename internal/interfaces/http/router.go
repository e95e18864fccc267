package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ubicaciones-api/internal/application/allocation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AllocationService *allocation.Service
	JWTSecret         string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; asignar exige rol admin o bodeguero.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	binHandler := NewBinHandler(deps.AllocationService)
	bins := api.Group("/bins")
	bins.Get("/", binHandler.List)
	bins.Get("/:id", binHandler.GetByID)
	bins.Get("/:id/occupancy", binHandler.Occupancy)
	bins.Get("/:id/allocations", binHandler.Allocations)

	allocHandler := NewAllocationHandler(deps.AllocationService)
	api.Post("/allocations", RequireRole(RoleAdmin, RoleBodeguero), allocHandler.Allocate)
}
