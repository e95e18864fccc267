package repository

import (
	"context"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
)

// AllocationRepository define el puerto de persistencia de asignaciones.
// Solo el ledger de capacidad escribe en él.
type AllocationRepository interface {
	// FindByBinAndProduct devuelve (nil, nil) si no existe la fila.
	FindByBinAndProduct(ctx context.Context, binID, productID string) (*entity.Allocation, error)
	// SumByBin suma cantidad y volumen de todas las asignaciones de la ubicación.
	SumByBin(ctx context.Context, binID string) (entity.Occupancy, error)
	ListByBin(ctx context.Context, binID string) ([]*entity.Allocation, error)
	// UpsertIncrement inserta la fila o acumula cantidad y volumen sobre la existente.
	// Rellena alloc con la fila resultante y devuelve si fue creada o actualizada.
	UpsertIncrement(ctx context.Context, alloc *entity.Allocation) (entity.AllocationAction, error)
}
