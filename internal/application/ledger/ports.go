package ledger

import (
	"context"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica de la base de datos, pasando
// repositorios atados a ella. Commit si fn devuelve nil, Rollback en cualquier otro caso.
// Si el bloqueo o la transacción entran en conflicto, el error debe envolver domain.ErrConflict;
// si la base no responde, domain.ErrStorageUnavailable.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		binRepo repository.BinRepository,
		allocRepo repository.AllocationRepository,
	) error) error
}
