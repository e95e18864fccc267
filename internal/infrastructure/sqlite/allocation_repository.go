package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo asignaciones sobre SQLite (usable con *sql.DB o *sql.Tx).
// El volumen se guarda como TEXT decimal y se suma en Go para no perder precisión.
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el repositorio.
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

const allocationColumns = `id, bin_id, product_id, quantity, volume_used, COALESCE(client_id, ''), created_at, updated_at`

func scanAllocation(row rowScanner) (*entity.Allocation, error) {
	var (
		a                    entity.Allocation
		createdAt, updatedAt string
	)
	err := row.Scan(&a.ID, &a.BinID, &a.ProductID, &a.Quantity, &a.VolumeUsed, &a.ClientID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByBinAndProduct obtiene la asignación del par o (nil, nil).
func (r *AllocationRepo) FindByBinAndProduct(ctx context.Context, binID, productID string) (*entity.Allocation, error) {
	a, err := scanAllocation(r.q.QueryRowContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations WHERE bin_id = ? AND product_id = ?`,
		binID, productID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("finding allocation", err)
	}
	return a, nil
}

// SumByBin suma cantidad y volumen de la ubicación.
func (r *AllocationRepo) SumByBin(ctx context.Context, binID string) (entity.Occupancy, error) {
	list, err := r.ListByBin(ctx, binID)
	if err != nil {
		return entity.Occupancy{}, err
	}
	var occ entity.Occupancy
	for _, a := range list {
		occ = occ.Add(entity.Occupancy{Quantity: a.Quantity, Volume: a.VolumeUsed})
	}
	return occ, nil
}

// ListByBin lista las asignaciones de la ubicación ordenadas por producto.
func (r *AllocationRepo) ListByBin(ctx context.Context, binID string) ([]*entity.Allocation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations WHERE bin_id = ? ORDER BY product_id`, binID)
	if err != nil {
		return nil, classify("listing allocations", err)
	}
	defer rows.Close()

	list := make([]*entity.Allocation, 0)
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, classify("scanning allocation", err)
		}
		list = append(list, a)
	}
	return list, classify("listing allocations", rows.Err())
}

// UpsertIncrement inserta o acumula con ON CONFLICT ... DO UPDATE. La cantidad se acumula en SQL;
// el volumen (TEXT decimal) se calcula a partir de la fila leída bajo el candado de escritura.
func (r *AllocationRepo) UpsertIncrement(ctx context.Context, alloc *entity.Allocation) (entity.AllocationAction, error) {
	existing, err := r.FindByBinAndProduct(ctx, alloc.BinID, alloc.ProductID)
	if err != nil {
		return "", err
	}
	action := entity.ActionCreated
	volume := alloc.VolumeUsed
	if existing != nil {
		action = entity.ActionUpdated
		volume = existing.VolumeUsed.Add(alloc.VolumeUsed)
	}
	var clientID any
	if alloc.ClientID != "" {
		clientID = alloc.ClientID
	}
	now := formatTime(alloc.UpdatedAt)
	out, err := scanAllocation(r.q.QueryRowContext(ctx,
		`INSERT INTO allocations (id, bin_id, product_id, quantity, volume_used, client_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (bin_id, product_id) DO UPDATE SET
		     quantity = quantity + excluded.quantity,
		     volume_used = ?,
		     client_id = COALESCE(client_id, excluded.client_id),
		     updated_at = excluded.updated_at
		 RETURNING `+allocationColumns,
		alloc.ID, alloc.BinID, alloc.ProductID, alloc.Quantity, volume.String(), clientID, now, now,
		volume.String(),
	))
	if err != nil {
		return "", classify("upserting allocation", err)
	}
	*alloc = *out
	return action, nil
}
