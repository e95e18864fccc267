package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ubicaciones-api/internal/application/dto"
	"github.com/jhoicas/Ubicaciones-api/internal/domain"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/capacity"
	"github.com/rs/zerolog/log"
)

// Códigos de error_kind expuestos por la API.
const (
	KindInvalidInput       = "INVALID_INPUT"
	KindBinNotFound        = "BIN_NOT_FOUND"
	KindNotFound           = "NOT_FOUND"
	KindOverQuantity       = "OVER_QUANTITY"
	KindOverVolume         = "OVER_VOLUME"
	KindConflict           = "CONFLICT"
	KindStorageUnavailable = "STORAGE_UNAVAILABLE"
	KindInternal           = "INTERNAL"
)

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error atendiendo petición")
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var valErr *domain.ValidationError
	var capErr *capacity.Error
	switch {
	case errors.As(err, &valErr):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    KindInvalidInput,
			Message: err.Error(),
			Details: fiber.Map{"field": valErr.Field, "reason": valErr.Reason},
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: KindInvalidInput, Message: err.Error()}
	case errors.Is(err, domain.ErrBinNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: KindBinNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: KindNotFound, Message: err.Error()}
	case errors.As(err, &capErr):
		// Con ambos límites excedidos prevalece OVER_QUANTITY; details.violations lista las dos dimensiones.
		kind := KindOverVolume
		if capErr.Has(capacity.DimensionQuantity) {
			kind = KindOverQuantity
		}
		return fiber.StatusConflict, dto.ErrorResponse{
			Code:    kind,
			Message: capErr.Error(),
			Details: fiber.Map{
				"bin_id":      capErr.BinID,
				"coordinates": dto.CoordinatesDTO{X: capErr.Coordinates.X, Y: capErr.Coordinates.Y, Z: capErr.Coordinates.Z},
				"violations":  capErr.Violations,
			},
		}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: KindConflict, Message: "conflicto de concurrencia, reintente"}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: KindStorageUnavailable, Message: "almacenamiento no disponible, intente más tarde"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: KindInternal, Message: "error interno"}
	}
}
