package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Coordinates posición física (x, y, z) de una ubicación dentro de la bodega.
// Se asignan al crear la ubicación y no cambian.
type Coordinates struct {
	X int
	Y int
	Z int
}

// String devuelve "(x,y,z)".
func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Bin representa una ubicación de almacenamiento con capacidad acotada.
// MaxQuantity == 0 significa cantidad ilimitada; MaxVolume == 0 significa volumen ilimitado.
type Bin struct {
	ID          string
	Label       string
	Coordinates Coordinates
	MaxQuantity int64
	MaxVolume   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuantityBounded indica si la dimensión cantidad tiene límite.
func (b *Bin) QuantityBounded() bool {
	return b.MaxQuantity > 0
}

// VolumeBounded indica si la dimensión volumen tiene límite.
func (b *Bin) VolumeBounded() bool {
	return b.MaxVolume.GreaterThan(decimal.Zero)
}
