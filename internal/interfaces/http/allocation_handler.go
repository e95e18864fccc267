package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ubicaciones-api/internal/application/allocation"
	"github.com/jhoicas/Ubicaciones-api/internal/application/dto"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
)

// AllocationHandler maneja la asignación de productos a ubicaciones (protegido).
type AllocationHandler struct {
	svc *allocation.Service
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(svc *allocation.Service) *AllocationHandler {
	return &AllocationHandler{svc: svc}
}

// Allocate godoc
// @Summary      Asignar producto a una ubicación
// @Description  Crea la asignación o acumula cantidad y volumen sobre la existente, si la ubicación lo admite.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "bin_id, product_id, quantity, volume_used, client_id"
// @Success      201   {object}  dto.AllocateResponse
// @Success      200   {object}  dto.AllocateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocations [post]
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: KindInvalidInput, Message: "cuerpo inválido"})
	}
	out, err := h.svc.AllocateFromRequest(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if out.Action == string(entity.ActionCreated) {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}
