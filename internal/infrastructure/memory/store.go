// Package memory implementa los puertos del ledger en memoria de proceso.
// Cada ubicación tiene su propio candado; asignaciones sobre ubicaciones distintas no se bloquean.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Ubicaciones-api/internal/application/ledger"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

var (
	_ ledger.TxRunner                 = (*TxRunner)(nil)
	_ repository.BinRepository        = (*BinRepo)(nil)
	_ repository.AllocationRepository = (*AllocationRepo)(nil)
)

// Store estado compartido: ubicaciones, asignaciones confirmadas y candados por ubicación.
type Store struct {
	mu       sync.RWMutex
	bins     map[string]entity.Bin
	allocs   map[string]entity.Allocation // clave binID|productID
	locksMu  sync.Mutex
	binLocks map[string]chan struct{}
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		bins:     make(map[string]entity.Bin),
		allocs:   make(map[string]entity.Allocation),
		binLocks: make(map[string]chan struct{}),
	}
}

func allocKey(binID, productID string) string {
	return binID + "|" + productID
}

// lockFor devuelve el candado (canal de capacidad 1) de la ubicación.
func (s *Store) lockFor(binID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.binLocks[binID]
	if !ok {
		l = make(chan struct{}, 1)
		s.binLocks[binID] = l
	}
	return l
}

func (s *Store) getBin(id string) (*entity.Bin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bins[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (s *Store) findAlloc(binID, productID string) (*entity.Allocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.allocs[allocKey(binID, productID)]
	if !ok {
		return nil, false
	}
	return &a, true
}

func (s *Store) allocsByBin(binID string) []entity.Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Allocation
	for _, a := range s.allocs {
		if a.BinID == binID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// BinRepo directorio de ubicaciones fuera de transacción.
type BinRepo struct {
	s *Store
}

// NewBinRepository construye el repositorio de ubicaciones.
func NewBinRepository(s *Store) *BinRepo {
	return &BinRepo{s: s}
}

// GetByID obtiene una ubicación por ID.
func (r *BinRepo) GetByID(_ context.Context, id string) (*entity.Bin, error) {
	b, ok := r.s.getBin(id)
	if !ok {
		return nil, nil
	}
	return b, nil
}

// GetForUpdate fuera de transacción no bloquea; equivale a GetByID.
func (r *BinRepo) GetForUpdate(ctx context.Context, id string) (*entity.Bin, error) {
	return r.GetByID(ctx, id)
}

// List lista ubicaciones ordenadas por ID.
func (r *BinRepo) List(_ context.Context, limit, offset int) ([]*entity.Bin, error) {
	r.s.mu.RLock()
	list := make([]*entity.Bin, 0, len(r.s.bins))
	for _, b := range r.s.bins {
		b := b
		list = append(list, &b)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if offset >= len(list) {
		return []*entity.Bin{}, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// Upsert crea la ubicación o actualiza etiqueta y capacidad; las coordenadas existentes se conservan.
func (r *BinRepo) Upsert(_ context.Context, bin *entity.Bin) error {
	if bin == nil || bin.ID == "" {
		return fmt.Errorf("upsert bin: id requerido")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.bins[bin.ID]; ok {
		bin.Coordinates = existing.Coordinates
		bin.CreatedAt = existing.CreatedAt
	}
	r.s.bins[bin.ID] = *bin
	return nil
}

// AllocationRepo lecturas de asignaciones fuera de transacción.
// UpsertIncrement solo está disponible dentro de TxRunner.Run.
type AllocationRepo struct {
	s *Store
}

// NewAllocationRepository construye el repositorio de asignaciones.
func NewAllocationRepository(s *Store) *AllocationRepo {
	return &AllocationRepo{s: s}
}

// FindByBinAndProduct obtiene la asignación confirmada del par.
func (r *AllocationRepo) FindByBinAndProduct(_ context.Context, binID, productID string) (*entity.Allocation, error) {
	a, ok := r.s.findAlloc(binID, productID)
	if !ok {
		return nil, nil
	}
	return a, nil
}

// SumByBin suma la ocupación confirmada.
func (r *AllocationRepo) SumByBin(_ context.Context, binID string) (entity.Occupancy, error) {
	var occ entity.Occupancy
	for _, a := range r.s.allocsByBin(binID) {
		occ = occ.Add(entity.Occupancy{Quantity: a.Quantity, Volume: a.VolumeUsed})
	}
	return occ, nil
}

// ListByBin lista asignaciones confirmadas de la ubicación.
func (r *AllocationRepo) ListByBin(_ context.Context, binID string) ([]*entity.Allocation, error) {
	rows := r.s.allocsByBin(binID)
	list := make([]*entity.Allocation, 0, len(rows))
	for i := range rows {
		list = append(list, &rows[i])
	}
	return list, nil
}

// UpsertIncrement fuera de transacción no está permitido: la admisión debe re-evaluarse bajo candado.
func (r *AllocationRepo) UpsertIncrement(_ context.Context, _ *entity.Allocation) (entity.AllocationAction, error) {
	return "", fmt.Errorf("upsert allocation: requiere transacción")
}
