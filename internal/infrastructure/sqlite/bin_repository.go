package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

var _ repository.BinRepository = (*BinRepo)(nil)

// BinRepo directorio de ubicaciones sobre SQLite (usable con *sql.DB o *sql.Tx).
type BinRepo struct {
	q Querier
}

// NewBinRepository construye el repositorio.
func NewBinRepository(q Querier) *BinRepo {
	return &BinRepo{q: q}
}

const binColumns = `id, label, x, y, z, max_quantity, max_volume, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBin(row rowScanner) (*entity.Bin, error) {
	var (
		b                    entity.Bin
		createdAt, updatedAt string
	)
	err := row.Scan(
		&b.ID, &b.Label, &b.Coordinates.X, &b.Coordinates.Y, &b.Coordinates.Z,
		&b.MaxQuantity, &b.MaxVolume, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID obtiene una ubicación por ID.
func (r *BinRepo) GetByID(ctx context.Context, id string) (*entity.Bin, error) {
	b, err := scanBin(r.q.QueryRowContext(ctx, `SELECT `+binColumns+` FROM bins WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("getting bin", err)
	}
	return b, nil
}

// GetForUpdate en SQLite equivale a GetByID: la transacción ya tiene el candado de escritura.
func (r *BinRepo) GetForUpdate(ctx context.Context, id string) (*entity.Bin, error) {
	return r.GetByID(ctx, id)
}

// List lista ubicaciones ordenadas por ID.
func (r *BinRepo) List(ctx context.Context, limit, offset int) ([]*entity.Bin, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+binColumns+` FROM bins ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, classify("listing bins", err)
	}
	defer rows.Close()

	list := make([]*entity.Bin, 0)
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, classify("scanning bin", err)
		}
		list = append(list, b)
	}
	return list, classify("listing bins", rows.Err())
}

// Upsert inserta la ubicación o actualiza etiqueta y capacidad; las coordenadas no cambian.
func (r *BinRepo) Upsert(ctx context.Context, bin *entity.Bin) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO bins (id, label, x, y, z, max_quantity, max_volume, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET label = excluded.label, max_quantity = excluded.max_quantity,
		     max_volume = excluded.max_volume, updated_at = excluded.updated_at`,
		bin.ID, bin.Label, bin.Coordinates.X, bin.Coordinates.Y, bin.Coordinates.Z,
		bin.MaxQuantity, bin.MaxVolume.String(), formatTime(bin.CreatedAt), formatTime(bin.UpdatedAt),
	)
	return classify("upserting bin", err)
}
