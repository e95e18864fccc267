package capacity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/jhoicas/Ubicaciones-api/internal/domain"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/capacity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func occ(q int64, v string) entity.Occupancy {
	return entity.Occupancy{Quantity: q, Volume: dec(v)}
}

func TestAdmit(t *testing.T) {
	bin := &entity.Bin{ID: "B1", Coordinates: entity.Coordinates{X: 1, Y: 2, Z: 3}, MaxQuantity: 100, MaxVolume: dec("50")}

	cases := []struct {
		name      string
		bin       *entity.Bin
		current   entity.Occupancy
		requested entity.Occupancy
		overQty   bool
		overVol   bool
	}{
		{name: "cabe", bin: bin, current: occ(40, "10"), requested: occ(20, "5")},
		{name: "justo en el límite", bin: bin, current: occ(40, "10"), requested: occ(60, "40")},
		{name: "excede cantidad", bin: bin, current: occ(40, "10"), requested: occ(70, "5"), overQty: true},
		{name: "excede volumen", bin: bin, current: occ(40, "10"), requested: occ(1, "40.000001"), overVol: true},
		{name: "excede ambos", bin: bin, current: occ(90, "45"), requested: occ(20, "10"), overQty: true, overVol: true},
		{
			name:      "cantidad ilimitada",
			bin:       &entity.Bin{ID: "B2", MaxQuantity: 0, MaxVolume: dec("5")},
			current:   occ(1_000_000, "1"),
			requested: occ(1_000_000, "1"),
		},
		{
			name:      "volumen ilimitado",
			bin:       &entity.Bin{ID: "B3", MaxQuantity: 10},
			current:   occ(5, "1000"),
			requested: occ(5, "99999"),
		},
		{
			name:      "solicitud enorme no desborda",
			bin:       bin,
			current:   occ(40, "0"),
			requested: occ(math.MaxInt64, "0"),
			overQty:   true,
		},
		{
			name:      "cantidad ilimitada no desborda int64",
			bin:       &entity.Bin{ID: "B4"},
			current:   occ(math.MaxInt64-1, "0"),
			requested: occ(2, "0"),
			overQty:   true,
		},
		{
			name:      "cantidad ilimitada hasta el máximo int64",
			bin:       &entity.Bin{ID: "B4"},
			current:   occ(math.MaxInt64-1, "0"),
			requested: occ(1, "0"),
		},
		{
			name:      "volumen ilimitado acotado por la representación",
			bin:       &entity.Bin{ID: "B5"},
			current:   occ(1, "999999999999"),
			requested: occ(1, "1"),
			overVol:   true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := capacity.Admit(tc.bin, tc.current, tc.requested)
			if !tc.overQty && !tc.overVol {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.overQty, errors.Is(err, domain.ErrOverQuantity))
			assert.Equal(t, tc.overVol, errors.Is(err, domain.ErrOverVolume))
		})
	}
}

func TestAdmit_MensajeNombraCoordenadasYLimites(t *testing.T) {
	bin := &entity.Bin{ID: "B1", Coordinates: entity.Coordinates{X: 1, Y: 2, Z: 3}, MaxQuantity: 100}
	err := capacity.Admit(bin, occ(40, "0"), occ(70, "0"))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "(1,2,3)")
	assert.Contains(t, msg, "límite 100")
	assert.Contains(t, msg, "actual 40")
	assert.Contains(t, msg, "solicitado 70")

	var capErr *capacity.Error
	require.True(t, errors.As(err, &capErr))
	assert.True(t, capErr.Has(capacity.DimensionQuantity))
	assert.False(t, capErr.Has(capacity.DimensionVolume))
}

func TestRemaining(t *testing.T) {
	bin := &entity.Bin{MaxQuantity: 100, MaxVolume: dec("50")}
	qty, qtyOK, vol, volOK := capacity.Remaining(bin, occ(40, "10.5"))
	assert.True(t, qtyOK)
	assert.Equal(t, int64(60), qty)
	assert.True(t, volOK)
	assert.True(t, vol.Equal(dec("39.5")))

	_, qtyOK, _, volOK = capacity.Remaining(&entity.Bin{}, occ(1, "1"))
	assert.False(t, qtyOK)
	assert.False(t, volOK)
}
