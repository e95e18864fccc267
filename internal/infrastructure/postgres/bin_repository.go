package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

var _ repository.BinRepository = (*BinRepo)(nil)

// BinRepo implementación de BinRepository sobre PostgreSQL (usable con pool o tx).
type BinRepo struct {
	q Querier
}

// NewBinRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewBinRepository(q Querier) *BinRepo {
	return &BinRepo{q: q}
}

const binColumns = `id, label, x, y, z, max_quantity, max_volume, created_at, updated_at`

func scanBin(row pgx.Row) (*entity.Bin, error) {
	var b entity.Bin
	err := row.Scan(
		&b.ID, &b.Label, &b.Coordinates.X, &b.Coordinates.Y, &b.Coordinates.Z,
		&b.MaxQuantity, &b.MaxVolume, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID obtiene una ubicación por ID.
func (r *BinRepo) GetByID(ctx context.Context, id string) (*entity.Bin, error) {
	b, err := scanBin(r.q.QueryRow(ctx, `SELECT `+binColumns+` FROM bins WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get bin", err)
	}
	return b, nil
}

// GetForUpdate obtiene la ubicación y bloquea su fila hasta el fin de la transacción (SELECT FOR UPDATE).
// Solo bloquea esa fila: asignaciones sobre otras ubicaciones no esperan.
func (r *BinRepo) GetForUpdate(ctx context.Context, id string) (*entity.Bin, error) {
	b, err := scanBin(r.q.QueryRow(ctx, `SELECT `+binColumns+` FROM bins WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get bin for update", err)
	}
	return b, nil
}

// List lista ubicaciones con paginación.
func (r *BinRepo) List(ctx context.Context, limit, offset int) ([]*entity.Bin, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+binColumns+` FROM bins ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, classify("list bins", err)
	}
	defer rows.Close()
	list := make([]*entity.Bin, 0)
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, classify("scan bin", err)
		}
		list = append(list, b)
	}
	return list, classify("list bins", rows.Err())
}

// Upsert inserta la ubicación o actualiza etiqueta y capacidad. Las coordenadas no se modifican.
func (r *BinRepo) Upsert(ctx context.Context, bin *entity.Bin) error {
	query := `
		INSERT INTO bins (id, label, x, y, z, max_quantity, max_volume, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id)
		DO UPDATE SET label = EXCLUDED.label, max_quantity = EXCLUDED.max_quantity,
			max_volume = EXCLUDED.max_volume, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		bin.ID, bin.Label, bin.Coordinates.X, bin.Coordinates.Y, bin.Coordinates.Z,
		bin.MaxQuantity, bin.MaxVolume, bin.UpdatedAt,
	)
	return classify("upsert bin", err)
}
