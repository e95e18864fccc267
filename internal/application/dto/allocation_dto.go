package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AllocateRequest body para POST /api/allocations.
// quantity y volume_used aceptan número JSON o string numérico; se validan en el caso de uso.
type AllocateRequest struct {
	BinID      string          `json:"bin_id"`
	ProductID  string          `json:"product_id"`
	Quantity   json.RawMessage `json:"quantity"`
	VolumeUsed json.RawMessage `json:"volume_used,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
}

// ErrNotNumeric el valor no es un número ni un string numérico.
var ErrNotNumeric = errors.New("no es numérico")

// ParseNumeric interpreta un valor crudo como decimal. Ausente o null -> (nil, nil).
// No hay coerción: "", "abc", true, objetos o arreglos devuelven ErrNotNumeric.
func ParseNumeric(raw json.RawMessage) (*decimal.Decimal, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var s string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, ErrNotNumeric
		}
	} else {
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return nil, ErrNotNumeric
		}
		s = n.String()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, ErrNotNumeric
	}
	return &d, nil
}

// CoordinatesDTO posición (x, y, z) de la ubicación.
type CoordinatesDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// AllocationResponse salida de una asignación.
type AllocationResponse struct {
	ID         string          `json:"id"`
	BinID      string          `json:"bin_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	VolumeUsed decimal.Decimal `json:"volume_used"`
	ClientID   string          `json:"client_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AllocateResponse resultado exitoso de una asignación.
type AllocateResponse struct {
	Allocation  AllocationResponse `json:"allocation"`
	Action      string             `json:"action"` // created | updated
	Coordinates CoordinatesDTO     `json:"coordinates"`
}

// AllocationListResponse asignaciones de una ubicación.
type AllocationListResponse struct {
	BinID string               `json:"bin_id"`
	Items []AllocationResponse `json:"items"`
}
