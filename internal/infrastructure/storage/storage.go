// Package storage selecciona la implementación del ledger según LEDGER_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ubicaciones-api/internal/application/ledger"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Ubicaciones-api/pkg/config"
	"github.com/rs/zerolog"
)

// Store repositorios y runner de transacciones de un driver, más su cierre.
type Store struct {
	Driver      string
	TxRunner    ledger.TxRunner
	Bins        repository.BinRepository
	Allocations repository.AllocationRepository
	close       func()
}

// Close libera conexiones del driver.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Ledger construye el ledger de capacidad sobre este store.
func (s *Store) Ledger() *ledger.Ledger {
	return ledger.New(s.TxRunner, s.Bins, s.Allocations)
}

// Open abre el driver configurado y, si DB_AUTO_MIGRATE está activo, crea el esquema.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Ledger.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		log.Info().Int("max_conns", cfg.DB.MaxConns).Dur("lock_timeout", cfg.Ledger.LockTimeout).Msg("ledger sobre PostgreSQL")
		return &Store{
			Driver:      config.DriverPostgres,
			TxRunner:    postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
			Bins:        postgres.NewBinRepository(pool),
			Allocations: postgres.NewAllocationRepository(pool),
			close:       pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Ledger.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := sqlite.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		log.Info().Str("path", cfg.Ledger.SQLitePath).Msg("ledger sobre SQLite")
		return &Store{
			Driver:      config.DriverSQLite,
			TxRunner:    sqlite.NewTxRunner(db),
			Bins:        sqlite.NewBinRepository(db),
			Allocations: sqlite.NewAllocationRepository(db),
			close:       func() { _ = db.Close() },
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("ledger en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &Store{
			Driver:      config.DriverMemory,
			TxRunner:    memory.NewTxRunner(s),
			Bins:        memory.NewBinRepository(s),
			Allocations: memory.NewAllocationRepository(s),
		}, nil
	}
	return nil, fmt.Errorf("driver de ledger desconocido %q", cfg.Ledger.Driver)
}
