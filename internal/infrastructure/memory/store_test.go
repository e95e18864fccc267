package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, ids ...string) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	bins := memory.NewBinRepository(s)
	for i, id := range ids {
		require.NoError(t, bins.Upsert(context.Background(), &entity.Bin{
			ID:          id,
			Coordinates: entity.Coordinates{X: i},
			MaxQuantity: 10,
		}))
	}
	return s
}

func TestTxRunner_ErrorDescartaEscrituras(t *testing.T) {
	s := seed(t, "B1")
	runner := memory.NewTxRunner(s)

	boom := errors.New("boom")
	err := runner.Run(context.Background(), func(_ repository.BinRepository, allocs repository.AllocationRepository) error {
		a := &entity.Allocation{ID: "a1", BinID: "B1", ProductID: "P1", Quantity: 5, VolumeUsed: decimal.Zero}
		if _, err := allocs.UpsertIncrement(context.Background(), a); err != nil {
			return err
		}
		occ, err := allocs.SumByBin(context.Background(), "B1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), occ.Quantity, "la transacción ve sus propias escrituras")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, err := memory.NewAllocationRepository(s).FindByBinAndProduct(context.Background(), "B1", "P1")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestTxRunner_UpsertIncrementAcumula(t *testing.T) {
	s := seed(t, "B1")
	runner := memory.NewTxRunner(s)

	upsert := func(qty int64, client string) (*entity.Allocation, entity.AllocationAction) {
		var out *entity.Allocation
		var action entity.AllocationAction
		require.NoError(t, runner.Run(context.Background(), func(_ repository.BinRepository, allocs repository.AllocationRepository) error {
			now := time.Now()
			a := &entity.Allocation{ID: "id-" + client, BinID: "B1", ProductID: "P1", Quantity: qty,
				VolumeUsed: decimal.NewFromFloat(0.5), ClientID: client, CreatedAt: now, UpdatedAt: now}
			var err error
			action, err = allocs.UpsertIncrement(context.Background(), a)
			out = a
			return err
		}))
		return out, action
	}

	first, action := upsert(3, "C1")
	assert.Equal(t, entity.ActionCreated, action)
	second, action := upsert(4, "C2")
	assert.Equal(t, entity.ActionUpdated, action)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(7), second.Quantity)
	assert.True(t, second.VolumeUsed.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "C1", second.ClientID, "se conserva el client_id original")
}

func TestTxRunner_CandadoPorUbicacion(t *testing.T) {
	s := seed(t, "B1", "B2")
	runner := memory.NewTxRunner(s)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), func(bins repository.BinRepository, _ repository.AllocationRepository) error {
			if _, err := bins.GetForUpdate(context.Background(), "B1"); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	// Otra ubicación no espera.
	err := runner.Run(context.Background(), func(bins repository.BinRepository, _ repository.AllocationRepository) error {
		_, err := bins.GetForUpdate(context.Background(), "B2")
		return err
	})
	require.NoError(t, err)

	// La misma ubicación espera hasta el timeout del contexto.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = runner.Run(ctx, func(bins repository.BinRepository, _ repository.AllocationRepository) error {
		_, err := bins.GetForUpdate(ctx, "B1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	// Liberado: se puede volver a tomar.
	err = runner.Run(context.Background(), func(bins repository.BinRepository, _ repository.AllocationRepository) error {
		b, err := bins.GetForUpdate(context.Background(), "B1")
		assert.NotNil(t, b)
		return err
	})
	require.NoError(t, err)
}

func TestAllocationRepo_UpsertFueraDeTransaccion(t *testing.T) {
	s := seed(t, "B1")
	_, err := memory.NewAllocationRepository(s).UpsertIncrement(context.Background(), &entity.Allocation{BinID: "B1", ProductID: "P1", Quantity: 1})
	assert.Error(t, err)
}

func TestBinRepo_ListPaginado(t *testing.T) {
	s := seed(t, "C", "A", "B")
	bins := memory.NewBinRepository(s)

	page, err := bins.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "A", page[0].ID)
	assert.Equal(t, "B", page[1].ID)

	page, err = bins.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].ID)

	page, err = bins.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
