package repository

import (
	"context"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
)

// BinRepository define el puerto de lectura del directorio de ubicaciones.
// GetByID y GetForUpdate devuelven (nil, nil) si la ubicación no existe.
type BinRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Bin, error)
	// GetForUpdate bloquea la ubicación hasta el fin de la transacción (SELECT FOR UPDATE).
	// Es el punto de serialización de todas las asignaciones sobre una misma ubicación.
	GetForUpdate(ctx context.Context, id string) (*entity.Bin, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Bin, error)
	// Upsert lo usa el cargador del directorio; las coordenadas no se sobrescriben.
	Upsert(ctx context.Context, bin *entity.Bin) error
}
