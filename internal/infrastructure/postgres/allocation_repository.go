package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo implementación de AllocationRepository sobre PostgreSQL (usable con pool o tx).
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador de asignaciones. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

const allocationColumns = `id, bin_id, product_id, quantity, volume_used, COALESCE(client_id, ''), created_at, updated_at`

func scanAllocation(row pgx.Row, extra ...any) (*entity.Allocation, error) {
	var a entity.Allocation
	dest := []any{
		&a.ID, &a.BinID, &a.ProductID, &a.Quantity, &a.VolumeUsed, &a.ClientID, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByBinAndProduct obtiene la asignación de un producto en una ubicación.
func (r *AllocationRepo) FindByBinAndProduct(ctx context.Context, binID, productID string) (*entity.Allocation, error) {
	a, err := scanAllocation(r.q.QueryRow(ctx,
		`SELECT `+allocationColumns+` FROM allocations WHERE bin_id = $1 AND product_id = $2`,
		binID, productID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("find allocation", err)
	}
	return a, nil
}

// SumByBin suma cantidad y volumen de la ubicación. Dentro de la tx, tras GetForUpdate,
// ve todas las asignaciones confirmadas antes de obtener el bloqueo.
func (r *AllocationRepo) SumByBin(ctx context.Context, binID string) (entity.Occupancy, error) {
	var occ entity.Occupancy
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::BIGINT, COALESCE(SUM(volume_used), 0)
		 FROM allocations WHERE bin_id = $1`, binID,
	).Scan(&occ.Quantity, &occ.Volume)
	if err != nil {
		return entity.Occupancy{}, classify("sum allocations", err)
	}
	return occ, nil
}

// ListByBin lista las asignaciones de la ubicación ordenadas por producto.
func (r *AllocationRepo) ListByBin(ctx context.Context, binID string) ([]*entity.Allocation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+allocationColumns+` FROM allocations WHERE bin_id = $1 ORDER BY product_id`, binID)
	if err != nil {
		return nil, classify("list allocations", err)
	}
	defer rows.Close()
	list := make([]*entity.Allocation, 0)
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, classify("scan allocation", err)
		}
		list = append(list, a)
	}
	return list, classify("list allocations", rows.Err())
}

// UpsertIncrement inserta o acumula en una sola sentencia (ON CONFLICT ... DO UPDATE).
// xmax = 0 identifica la fila recién insertada.
func (r *AllocationRepo) UpsertIncrement(ctx context.Context, alloc *entity.Allocation) (entity.AllocationAction, error) {
	query := `
		INSERT INTO allocations (id, bin_id, product_id, quantity, volume_used, client_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $7)
		ON CONFLICT (bin_id, product_id)
		DO UPDATE SET quantity = allocations.quantity + EXCLUDED.quantity,
			volume_used = allocations.volume_used + EXCLUDED.volume_used,
			client_id = COALESCE(allocations.client_id, EXCLUDED.client_id),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + allocationColumns + `, (xmax = 0) AS inserted`
	var inserted bool
	out, err := scanAllocation(r.q.QueryRow(ctx, query,
		alloc.ID, alloc.BinID, alloc.ProductID, alloc.Quantity, alloc.VolumeUsed, alloc.ClientID, alloc.UpdatedAt,
	), &inserted)
	if err != nil {
		return "", classify("upsert allocation", err)
	}
	*alloc = *out
	if inserted {
		return entity.ActionCreated, nil
	}
	return entity.ActionUpdated, nil
}
