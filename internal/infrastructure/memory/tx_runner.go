package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks en una "transacción" de memoria: las escrituras quedan en
// staging y se aplican juntas solo si fn devuelve nil.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn; los candados tomados con GetForUpdate se liberan al terminar.
func (r *TxRunner) Run(ctx context.Context, fn func(
	binRepo repository.BinRepository,
	allocRepo repository.AllocationRepository,
) error) error {
	t := &tx{s: r.s, held: map[string]chan struct{}{}, pending: map[string]entity.Allocation{}}
	defer t.release()

	if err := fn(&txBinRepo{t: t}, &txAllocRepo{t: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.commit()
	return nil
}

type tx struct {
	s       *Store
	held    map[string]chan struct{}
	pending map[string]entity.Allocation
}

func (t *tx) lock(ctx context.Context, binID string) error {
	if _, ok := t.held[binID]; ok {
		return nil
	}
	l := t.s.lockFor(binID)
	select {
	case l <- struct{}{}:
		t.held[binID] = l
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock bin %s: %w", binID, ctx.Err())
	}
}

func (t *tx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

func (t *tx) commit() {
	if len(t.pending) == 0 {
		return
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for k, a := range t.pending {
		t.s.allocs[k] = a
	}
}

// visible devuelve la asignación vista por la transacción (staging sobre confirmado).
func (t *tx) visible(binID, productID string) (entity.Allocation, bool) {
	if a, ok := t.pending[allocKey(binID, productID)]; ok {
		return a, true
	}
	a, ok := t.s.findAlloc(binID, productID)
	if !ok {
		return entity.Allocation{}, false
	}
	return *a, true
}

type txBinRepo struct {
	t *tx
}

func (r *txBinRepo) GetByID(_ context.Context, id string) (*entity.Bin, error) {
	b, ok := r.t.s.getBin(id)
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (r *txBinRepo) GetForUpdate(ctx context.Context, id string) (*entity.Bin, error) {
	if _, ok := r.t.s.getBin(id); !ok {
		return nil, nil
	}
	if err := r.t.lock(ctx, id); err != nil {
		return nil, err
	}
	// Releer bajo candado: la capacidad pudo cambiar mientras se esperaba.
	b, _ := r.t.s.getBin(id)
	return b, nil
}

func (r *txBinRepo) List(ctx context.Context, limit, offset int) ([]*entity.Bin, error) {
	return NewBinRepository(r.t.s).List(ctx, limit, offset)
}

func (r *txBinRepo) Upsert(ctx context.Context, bin *entity.Bin) error {
	return NewBinRepository(r.t.s).Upsert(ctx, bin)
}

type txAllocRepo struct {
	t *tx
}

func (r *txAllocRepo) FindByBinAndProduct(_ context.Context, binID, productID string) (*entity.Allocation, error) {
	a, ok := r.t.visible(binID, productID)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *txAllocRepo) SumByBin(ctx context.Context, binID string) (entity.Occupancy, error) {
	rows, err := r.ListByBin(ctx, binID)
	if err != nil {
		return entity.Occupancy{}, err
	}
	var occ entity.Occupancy
	for _, a := range rows {
		occ = occ.Add(entity.Occupancy{Quantity: a.Quantity, Volume: a.VolumeUsed})
	}
	return occ, nil
}

func (r *txAllocRepo) ListByBin(_ context.Context, binID string) ([]*entity.Allocation, error) {
	seen := map[string]bool{}
	var list []*entity.Allocation
	for _, a := range r.t.s.allocsByBin(binID) {
		a := a
		if p, ok := r.t.pending[allocKey(binID, a.ProductID)]; ok {
			a = p
		}
		seen[a.ProductID] = true
		list = append(list, &a)
	}
	for _, p := range r.t.pending {
		if p.BinID == binID && !seen[p.ProductID] {
			p := p
			list = append(list, &p)
		}
	}
	return list, nil
}

func (r *txAllocRepo) UpsertIncrement(_ context.Context, alloc *entity.Allocation) (entity.AllocationAction, error) {
	key := allocKey(alloc.BinID, alloc.ProductID)
	existing, ok := r.t.visible(alloc.BinID, alloc.ProductID)
	if !ok {
		r.t.pending[key] = *alloc
		return entity.ActionCreated, nil
	}
	existing.Quantity += alloc.Quantity
	existing.VolumeUsed = existing.VolumeUsed.Add(alloc.VolumeUsed)
	existing.UpdatedAt = alloc.UpdatedAt
	if existing.ClientID == "" {
		existing.ClientID = alloc.ClientID
	}
	r.t.pending[key] = existing
	*alloc = existing
	return entity.ActionUpdated, nil
}
