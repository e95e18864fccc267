package sqlite

import (
	"context"
	"database/sql"

	"github.com/jhoicas/Ubicaciones-api/internal/application/ledger"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	binRepo repository.BinRepository,
	allocRepo repository.AllocationRepository,
) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(NewBinRepository(tx), NewAllocationRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("committing transaction", err)
	}
	return nil
}
