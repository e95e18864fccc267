// Package sqlite implementa los puertos del ledger sobre SQLite embebido (modernc.org/sqlite).
// Pensado para desarrollo y despliegues de un solo nodo: SQLite tiene un único escritor,
// por lo que las transacciones sobre ubicaciones distintas también se serializan.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Open abre la base SQLite y configura pragmas. Las transacciones se abren con
// BEGIN IMMEDIATE para tomar el candado de escritura antes de leer la ocupación.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		dsn = path + "?_txlock=immediate"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Una sola conexión: las bases :memory: son por conexión y SQLite admite un solo escritor.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS bins (
    id           TEXT PRIMARY KEY,
    label        TEXT NOT NULL DEFAULT '',
    x            INTEGER NOT NULL,
    y            INTEGER NOT NULL,
    z            INTEGER NOT NULL,
    max_quantity INTEGER NOT NULL DEFAULT 0 CHECK (max_quantity >= 0),
    max_volume   TEXT NOT NULL DEFAULT '0',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
    id          TEXT PRIMARY KEY,
    bin_id      TEXT NOT NULL REFERENCES bins(id),
    product_id  TEXT NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity >= 0),
    volume_used TEXT NOT NULL DEFAULT '0',
    client_id   TEXT,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    UNIQUE (bin_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_allocations_bin ON allocations(bin_id);
`

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
