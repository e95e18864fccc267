// Package capacity contiene la decisión de admisión de una ubicación (servicio de dominio puro).
package capacity

import (
	"fmt"
	"math"
	"strings"

	"github.com/jhoicas/Ubicaciones-api/internal/domain"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Dimension identifica el límite violado.
type Dimension string

const (
	DimensionQuantity Dimension = "quantity"
	DimensionVolume   Dimension = "volume"
)

// Límites de representación compartidos por todos los drivers (NUMERIC(18,6) en PostgreSQL).
const VolumeScale = 6

var (
	// MaxStoredQuantity tope absoluto de cantidad acumulada en una ubicación, aun sin límite configurado.
	MaxStoredQuantity int64 = math.MaxInt64
	// VolumeCeiling volumen acumulado máximo (exclusivo) representable.
	VolumeCeiling = decimal.New(1, 12)
)

// Violation detalle de un límite excedido: límite, uso actual y delta solicitado.
type Violation struct {
	Dimension Dimension       `json:"dimension"`
	Limit     decimal.Decimal `json:"limit"`
	Current   decimal.Decimal `json:"current"`
	Requested decimal.Decimal `json:"requested"`
}

// Error admisión denegada. Coincide con domain.ErrOverQuantity y/o domain.ErrOverVolume
// según las dimensiones violadas.
type Error struct {
	BinID       string
	Coordinates entity.Coordinates
	Violations  []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: límite %s, actual %s, solicitado %s",
			v.Dimension, v.Limit.String(), v.Current.String(), v.Requested.String()))
	}
	return fmt.Sprintf("capacidad excedida en ubicación %s %s: %s",
		e.BinID, e.Coordinates, strings.Join(parts, "; "))
}

// Is permite errors.Is(err, domain.ErrOverQuantity) y errors.Is(err, domain.ErrOverVolume).
func (e *Error) Is(target error) bool {
	for _, v := range e.Violations {
		if v.Dimension == DimensionQuantity && target == domain.ErrOverQuantity {
			return true
		}
		if v.Dimension == DimensionVolume && target == domain.ErrOverVolume {
			return true
		}
	}
	return false
}

// Has indica si la dimensión fue violada.
func (e *Error) Has(d Dimension) bool {
	for _, v := range e.Violations {
		if v.Dimension == d {
			return true
		}
	}
	return false
}

// Admit decide si la solicitud cabe en la capacidad restante de la ubicación.
// Devuelve nil (Allow) o *Error con todas las dimensiones violadas.
// Un límite en 0 significa "sin límite" solo para esa dimensión.
func Admit(bin *entity.Bin, current, requested entity.Occupancy) error {
	var violations []Violation
	// Una ubicación sin límite sigue acotada por lo representable: int64 y NUMERIC(18,6).
	qtyLimit := MaxStoredQuantity
	if bin.QuantityBounded() {
		qtyLimit = bin.MaxQuantity
	}
	// Se compara contra el restante para no desbordar int64.
	if requested.Quantity > qtyLimit-current.Quantity {
		violations = append(violations, Violation{
			Dimension: DimensionQuantity,
			Limit:     decimal.NewFromInt(qtyLimit),
			Current:   decimal.NewFromInt(current.Quantity),
			Requested: decimal.NewFromInt(requested.Quantity),
		})
	}
	total := current.Volume.Add(requested.Volume)
	switch {
	case bin.VolumeBounded() && total.GreaterThan(bin.MaxVolume):
		violations = append(violations, Violation{
			Dimension: DimensionVolume,
			Limit:     bin.MaxVolume,
			Current:   current.Volume,
			Requested: requested.Volume,
		})
	case !bin.VolumeBounded() && total.GreaterThanOrEqual(VolumeCeiling):
		violations = append(violations, Violation{
			Dimension: DimensionVolume,
			Limit:     VolumeCeiling,
			Current:   current.Volume,
			Requested: requested.Volume,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return &Error{BinID: bin.ID, Coordinates: bin.Coordinates, Violations: violations}
}

// Remaining capacidad restante por dimensión; ok=false si la dimensión es ilimitada.
func Remaining(bin *entity.Bin, current entity.Occupancy) (qty int64, qtyOK bool, vol decimal.Decimal, volOK bool) {
	if bin.QuantityBounded() {
		qty, qtyOK = bin.MaxQuantity-current.Quantity, true
		if qty < 0 {
			qty = 0
		}
	}
	if bin.VolumeBounded() {
		vol, volOK = bin.MaxVolume.Sub(current.Volume), true
		if vol.IsNegative() {
			vol = decimal.Zero
		}
	}
	return qty, qtyOK, vol, volOK
}
