package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrBinNotFound        = errors.New("ubicación no encontrada")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrOverQuantity       = errors.New("capacidad de cantidad excedida")
	ErrOverVolume         = errors.New("capacidad de volumen excedida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// ValidationError describe un campo rechazado antes de tocar el ledger.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "entrada inválida: " + e.Field + " " + e.Reason
}

// Is permite comparar contra ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
