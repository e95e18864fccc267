// Package ledger es la fuente autoritativa de ocupación por ubicación y el único lugar
// donde se decide la admisión de una asignación.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Ubicaciones-api/internal/domain"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/capacity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
	"github.com/jhoicas/Ubicaciones-api/pkg/tracing"
	"github.com/shopspring/decimal"
)

// Ledger libro de capacidad: lecturas de ubicaciones/ocupación y escritura de asignaciones.
type Ledger struct {
	txRunner  TxRunner
	binRepo   repository.BinRepository
	allocRepo repository.AllocationRepository
	now       func() time.Time
}

// New construye el ledger. binRepo y allocRepo son los repositorios fuera de transacción
// (pool); las escrituras siempre pasan por txRunner.
func New(txRunner TxRunner, binRepo repository.BinRepository, allocRepo repository.AllocationRepository) *Ledger {
	return &Ledger{
		txRunner:  txRunner,
		binRepo:   binRepo,
		allocRepo: allocRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ApplyInput delta solicitado para un par (ubicación, producto).
type ApplyInput struct {
	BinID     string
	ProductID string
	Quantity  int64
	Volume    decimal.Decimal
	ClientID  string
}

// ApplyResult fila resultante, acción y la ubicación leída dentro de la misma transacción.
type ApplyResult struct {
	Allocation *entity.Allocation
	Action     entity.AllocationAction
	Bin        *entity.Bin
}

// GetBin obtiene capacidad y coordenadas de una ubicación.
func (l *Ledger) GetBin(ctx context.Context, binID string) (*entity.Bin, error) {
	bin, err := l.binRepo.GetByID(ctx, binID)
	if err != nil {
		return nil, err
	}
	if bin == nil {
		return nil, domain.ErrBinNotFound
	}
	return bin, nil
}

// ListBins lista el directorio de ubicaciones.
func (l *Ledger) ListBins(ctx context.Context, limit, offset int) ([]*entity.Bin, error) {
	return l.binRepo.List(ctx, limit, offset)
}

// GetOccupancy suma cantidad y volumen de todas las asignaciones de la ubicación.
func (l *Ledger) GetOccupancy(ctx context.Context, binID string) (entity.Occupancy, error) {
	return l.allocRepo.SumByBin(ctx, binID)
}

// FindAllocation obtiene la asignación de un producto en una ubicación.
func (l *Ledger) FindAllocation(ctx context.Context, binID, productID string) (*entity.Allocation, error) {
	alloc, err := l.allocRepo.FindByBinAndProduct(ctx, binID, productID)
	if err != nil {
		return nil, err
	}
	if alloc == nil {
		return nil, domain.ErrNotFound
	}
	return alloc, nil
}

// ListAllocations lista las asignaciones de una ubicación.
func (l *Ledger) ListAllocations(ctx context.Context, binID string) ([]*entity.Allocation, error) {
	return l.allocRepo.ListByBin(ctx, binID)
}

// Admit decisión pura de admisión; nil = Allow, *capacity.Error = Deny.
func (l *Ledger) Admit(bin *entity.Bin, current, requested entity.Occupancy) error {
	return capacity.Admit(bin, current, requested)
}

// ApplyAllocation bloquea la ubicación, re-evalúa la admisión contra la ocupación vista
// dentro de la transacción y acumula (o crea) la fila en la misma unidad atómica.
// No reintenta: un conflicto se devuelve envuelto en domain.ErrConflict.
func (l *Ledger) ApplyAllocation(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.ApplyAllocation", "INTERNAL")
	defer span.End()
	span.WithAttributes(map[string]string{"bin_id": in.BinID, "product_id": in.ProductID})

	var result *ApplyResult
	err := l.txRunner.Run(ctx, func(binRepo repository.BinRepository, allocRepo repository.AllocationRepository) error {
		// Bloqueo por ubicación: serializa asignaciones concurrentes sobre el mismo bin
		bin, err := binRepo.GetForUpdate(ctx, in.BinID)
		if err != nil {
			return err
		}
		if bin == nil {
			return domain.ErrBinNotFound
		}
		current, err := allocRepo.SumByBin(ctx, in.BinID)
		if err != nil {
			return err
		}
		requested := entity.Occupancy{Quantity: in.Quantity, Volume: in.Volume}
		if err := capacity.Admit(bin, current, requested); err != nil {
			return err
		}
		now := l.now()
		alloc := &entity.Allocation{
			ID:         uuid.New().String(),
			BinID:      in.BinID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			VolumeUsed: in.Volume,
			ClientID:   in.ClientID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		action, err := allocRepo.UpsertIncrement(ctx, alloc)
		if err != nil {
			return err
		}
		result = &ApplyResult{Allocation: alloc, Action: action, Bin: bin}
		return nil
	})
	span.SetStatus(err)
	if err != nil {
		return nil, err
	}
	return result, nil
}
