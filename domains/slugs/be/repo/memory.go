package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
)

type ownerKey struct {
	id  string
	typ service.OwnerType
}

// MemoryRepository is an in-memory implementation suitable for tests and
// early development. The single mutex gives it the same atomic-claim
// semantics the Postgres partial unique indexes provide.
type MemoryRepository struct {
	mu            sync.RWMutex
	history       []service.Assignment
	activeBySlug  map[string]int
	activeByOwner map[ownerKey]int
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		activeBySlug:  make(map[string]int),
		activeByOwner: make(map[ownerKey]int),
	}
}

func (r *MemoryRepository) Claim(ctx context.Context, a service.Assignment) (service.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.activeBySlug[a.Slug]; taken {
		return service.Assignment{}, service.ErrConflict
	}
	key := ownerKey{id: a.Owner.ID, typ: a.Owner.Type}
	if _, held := r.activeByOwner[key]; held {
		return service.Assignment{}, service.ErrConflict
	}

	a.IsActive = true
	r.history = append(r.history, a)
	idx := len(r.history) - 1
	r.activeBySlug[a.Slug] = idx
	r.activeByOwner[key] = idx
	return a, nil
}

func (r *MemoryRepository) Supersede(ctx context.Context, a service.Assignment, oldSlug string) (service.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ownerKey{id: a.Owner.ID, typ: a.Owner.Type}
	oldIdx, held := r.activeByOwner[key]
	if !held || r.history[oldIdx].Slug != oldSlug {
		return service.Assignment{}, service.ErrNotFound
	}
	if holder, taken := r.activeBySlug[a.Slug]; taken && holder != oldIdx {
		return service.Assignment{}, service.ErrConflict
	}

	r.history[oldIdx].IsActive = false
	r.history[oldIdx].UpdatedAt = a.UpdatedAt
	delete(r.activeBySlug, oldSlug)

	a.IsActive = true
	r.history = append(r.history, a)
	idx := len(r.history) - 1
	r.activeBySlug[a.Slug] = idx
	r.activeByOwner[key] = idx
	return a, nil
}

func (r *MemoryRepository) GetActiveBySlug(ctx context.Context, s string) (service.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.activeBySlug[s]
	if !ok {
		return service.Assignment{}, service.ErrNotFound
	}
	return r.history[idx], nil
}

func (r *MemoryRepository) GetLatestBySlug(ctx context.Context, s string) (service.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Slug == s {
			return r.history[i], nil
		}
	}
	return service.Assignment{}, service.ErrNotFound
}

func (r *MemoryRepository) GetActiveByOwner(ctx context.Context, owner service.Owner) (service.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.activeByOwner[ownerKey{id: owner.ID, typ: owner.Type}]
	if !ok {
		return service.Assignment{}, service.ErrNotFound
	}
	return r.history[idx], nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, owner service.Owner) ([]service.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []service.Assignment
	for _, a := range r.history {
		if a.Owner.ID == owner.ID && a.Owner.Type == owner.Type {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Ensure interface compliance.
var _ service.Repository = (*MemoryRepository)(nil)
