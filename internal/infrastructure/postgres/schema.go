package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS bins (
    id           TEXT PRIMARY KEY,
    label        TEXT NOT NULL DEFAULT '',
    x            INTEGER NOT NULL,
    y            INTEGER NOT NULL,
    z            INTEGER NOT NULL,
    max_quantity BIGINT NOT NULL DEFAULT 0 CHECK (max_quantity >= 0),
    max_volume   NUMERIC(18,6) NOT NULL DEFAULT 0 CHECK (max_volume >= 0),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS allocations (
    id          TEXT PRIMARY KEY,
    bin_id      TEXT NOT NULL REFERENCES bins(id),
    product_id  TEXT NOT NULL,
    quantity    BIGINT NOT NULL CHECK (quantity >= 0),
    volume_used NUMERIC(18,6) NOT NULL DEFAULT 0 CHECK (volume_used >= 0),
    client_id   TEXT,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
    CONSTRAINT allocations_bin_product_key UNIQUE (bin_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_allocations_bin ON allocations(bin_id);
`

// EnsureSchema crea las tablas bins y allocations si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return classify("crear schema", err)
	}
	return nil
}

// Schema devuelve el DDL (lo usa cmd/seed_bins al generar scripts).
func Schema() string {
	return fmt.Sprintf("-- schema ubicaciones\n%s", schema)
}
