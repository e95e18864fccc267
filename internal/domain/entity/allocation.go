package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationAction resultado de aplicar una asignación.
type AllocationAction string

const (
	ActionCreated AllocationAction = "created"
	ActionUpdated AllocationAction = "updated"
)

// Allocation cantidad de un producto almacenada en una ubicación.
// Existe a lo sumo una fila por (BinID, ProductID); asignaciones repetidas se acumulan.
type Allocation struct {
	ID         string
	BinID      string
	ProductID  string
	Quantity   int64
	VolumeUsed decimal.Decimal
	ClientID   string // opcional, no validado
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Occupancy suma de cantidad y volumen ya asignados en una ubicación.
type Occupancy struct {
	Quantity int64
	Volume   decimal.Decimal
}

// Add devuelve la ocupación resultante de sumar otra.
func (o Occupancy) Add(other Occupancy) Occupancy {
	return Occupancy{
		Quantity: o.Quantity + other.Quantity,
		Volume:   o.Volume.Add(other.Volume),
	}
}
