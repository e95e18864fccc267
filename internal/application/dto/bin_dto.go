package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BinResponse salida de una ubicación. max_* en 0 = sin límite.
type BinResponse struct {
	ID          string          `json:"id"`
	Label       string          `json:"label,omitempty"`
	Coordinates CoordinatesDTO  `json:"coordinates"`
	MaxQuantity int64           `json:"max_quantity"`
	MaxVolume   decimal.Decimal `json:"max_volume"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BinListResponse lista paginada de ubicaciones.
type BinListResponse struct {
	Items []BinResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// OccupancyResponse ocupación actual y capacidad restante. remaining_* se omite si la dimensión es ilimitada.
type OccupancyResponse struct {
	BinID             string           `json:"bin_id"`
	Coordinates       CoordinatesDTO   `json:"coordinates"`
	MaxQuantity       int64            `json:"max_quantity"`
	MaxVolume         decimal.Decimal  `json:"max_volume"`
	CurrentQuantity   int64            `json:"current_quantity"`
	CurrentVolume     decimal.Decimal  `json:"current_volume"`
	RemainingQuantity *int64           `json:"remaining_quantity,omitempty"`
	RemainingVolume   *decimal.Decimal `json:"remaining_volume,omitempty"`
}
