package allocation

import (
	"context"
	"time"

	"github.com/jhoicas/Ubicaciones-api/internal/application/dto"
	"github.com/jhoicas/Ubicaciones-api/internal/application/ledger"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
)

// CapacityLedger es lo que el servicio necesita del ledger; *ledger.Ledger lo implementa.
type CapacityLedger interface {
	GetBin(ctx context.Context, binID string) (*entity.Bin, error)
	ListBins(ctx context.Context, limit, offset int) ([]*entity.Bin, error)
	GetOccupancy(ctx context.Context, binID string) (entity.Occupancy, error)
	ListAllocations(ctx context.Context, binID string) ([]*entity.Allocation, error)
	ApplyAllocation(ctx context.Context, in ledger.ApplyInput) (*ledger.ApplyResult, error)
}

var _ CapacityLedger = (*ledger.Ledger)(nil)

// Tipos de evento publicados tras una asignación confirmada.
const (
	EventAllocationCreated = "allocation.created"
	EventAllocationUpdated = "allocation.updated"
)

// Event notificación de una asignación ya confirmada en el ledger.
type Event struct {
	ID          string                 `json:"event_id"`
	Type        string                 `json:"type"`
	Allocation  dto.AllocationResponse `json:"allocation"`
	Coordinates dto.CoordinatesDTO     `json:"coordinates"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// EventPublisher publica eventos de asignación (Kafka o no-op).
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
