package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ubicaciones-api/internal/application/allocation"
	"github.com/jhoicas/Ubicaciones-api/internal/application/dto"
)

// BinHandler consultas de ubicaciones y su ocupación (protegido).
type BinHandler struct {
	svc *allocation.Service
}

// NewBinHandler construye el handler.
func NewBinHandler(svc *allocation.Service) *BinHandler {
	return &BinHandler{svc: svc}
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         bins
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.BinListResponse
// @Router       /api/bins [get]
func (h *BinHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: KindInvalidInput, Message: "paginación inválida"})
	}
	out, err := h.svc.ListBins(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ubicación
// @Tags         bins
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la ubicación"
// @Success      200  {object}  dto.BinResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bins/{id} [get]
func (h *BinHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.GetBin(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Occupancy godoc
// @Summary      Ocupación y capacidad restante
// @Tags         bins
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la ubicación"
// @Success      200  {object}  dto.OccupancyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bins/{id}/occupancy [get]
func (h *BinHandler) Occupancy(c *fiber.Ctx) error {
	out, err := h.svc.GetOccupancy(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Allocations godoc
// @Summary      Asignaciones de una ubicación
// @Tags         bins
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la ubicación"
// @Success      200  {object}  dto.AllocationListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bins/{id}/allocations [get]
func (h *BinHandler) Allocations(c *fiber.Ctx) error {
	out, err := h.svc.ListAllocations(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
